package export

import (
	"context"
	"fmt"
	"log/slog"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"

	"foxie/internal/config"
)

// greptimeClient is the subset of the ingester client the writer uses.
type greptimeClient interface {
	Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error)
}

// GreptimeDBWriter writes casts and damage rows to GreptimeDB via the ingester client.
type GreptimeDBWriter struct {
	client      greptimeClient
	castTable   string
	damageTable string
	logger      *slog.Logger
}

// NewGreptimeDBWriter connects to the configured GreptimeDB endpoint.
func NewGreptimeDBWriter(cfg config.Greptime, logger *slog.Logger) (*GreptimeDBWriter, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("greptime endpoint not configured")
	}
	gcfg := greptime.NewConfig(cfg.Endpoint).WithDatabase(cfg.Database)
	if cfg.Port > 0 {
		gcfg = gcfg.WithPort(cfg.Port)
	}
	client, err := greptime.NewClient(gcfg)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GreptimeDBWriter{
		client:      client,
		castTable:   cfg.CastTable,
		damageTable: cfg.DamageTable,
		logger:      logger,
	}, nil
}

// WriteCast inserts a single cast row.
func (w *GreptimeDBWriter) WriteCast(row CastRow) error {
	return w.WriteCasts([]CastRow{row})
}

// WriteCasts inserts multiple cast rows.
func (w *GreptimeDBWriter) WriteCasts(rows []CastRow) error {
	if len(rows) == 0 {
		return nil
	}
	tbl, err := table.New(w.castTable)
	if err != nil {
		return err
	}
	columns := []struct {
		add  func(string, types.ColumnType) error
		name string
		typ  types.ColumnType
	}{
		{tbl.AddTagColumn, "session", types.STRING},
		{tbl.AddTagColumn, "encounter", types.STRING},
		{tbl.AddTagColumn, "player_id", types.INT64},
		{tbl.AddFieldColumn, "player", types.STRING},
		{tbl.AddFieldColumn, "account", types.STRING},
		{tbl.AddFieldColumn, "profession", types.STRING},
		{tbl.AddFieldColumn, "group_no", types.INT64},
		{tbl.AddFieldColumn, "skill_id", types.INT64},
		{tbl.AddFieldColumn, "skill", types.STRING},
		{tbl.AddFieldColumn, "start_ms", types.FLOAT64},
		{tbl.AddFieldColumn, "duration_ms", types.FLOAT64},
		{tbl.AddTimestampColumn, "ts", types.TIMESTAMP_MILLISECOND},
	}
	for _, c := range columns {
		if err := c.add(c.name, c.typ); err != nil {
			return err
		}
	}
	for _, r := range rows {
		if err := tbl.AddRow(r.Session, r.Encounter, int64(r.PlayerID), r.Player, r.Account, r.Profession,
			int64(r.Group), r.SkillID, r.Skill, r.Start, r.Duration, r.Timestamp); err != nil {
			return err
		}
	}
	return w.write(tbl, len(rows))
}

// WriteDamage inserts a single damage row.
func (w *GreptimeDBWriter) WriteDamage(row DamageRow) error {
	return w.WriteDamages([]DamageRow{row})
}

// WriteDamages inserts multiple damage rows.
func (w *GreptimeDBWriter) WriteDamages(rows []DamageRow) error {
	if len(rows) == 0 {
		return nil
	}
	tbl, err := table.New(w.damageTable)
	if err != nil {
		return err
	}
	if err := tbl.AddTagColumn("session", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddTagColumn("encounter", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("second", types.INT64); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("damage", types.FLOAT64); err != nil {
		return err
	}
	if err := tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND); err != nil {
		return err
	}
	for _, r := range rows {
		if err := tbl.AddRow(r.Session, r.Encounter, int64(r.Second), r.Damage, r.Timestamp); err != nil {
			return err
		}
	}
	return w.write(tbl, len(rows))
}

func (w *GreptimeDBWriter) write(tbl *table.Table, n int) error {
	resp, err := w.client.Write(context.Background(), tbl)
	if err != nil {
		w.logger.Error("greptime write failed", "err", err)
		return err
	}
	w.logger.Debug("greptime write", "rows", n, "affected", resp.GetAffectedRows().GetValue())
	return nil
}
