package export

import (
	"encoding/json"
	"os"
)

// FileWriter writes cast and damage rows to JSONL files.
type FileWriter struct {
	castFile   *os.File
	damageFile *os.File
	castEnc    *json.Encoder
	damageEnc  *json.Encoder
}

// NewFileWriter creates a FileWriter. damagePath may be empty to skip damage rows.
func NewFileWriter(castPath, damagePath string) (*FileWriter, error) {
	cf, err := os.Create(castPath)
	if err != nil {
		return nil, err
	}
	fw := &FileWriter{castFile: cf, castEnc: json.NewEncoder(cf)}
	if damagePath != "" {
		df, err := os.Create(damagePath)
		if err != nil {
			cf.Close()
			return nil, err
		}
		fw.damageFile = df
		fw.damageEnc = json.NewEncoder(df)
	}
	return fw, nil
}

// WriteCast logs a single cast row.
func (f *FileWriter) WriteCast(row CastRow) error {
	return f.castEnc.Encode(row)
}

// WriteCasts logs multiple cast rows.
func (f *FileWriter) WriteCasts(rows []CastRow) error {
	for _, r := range rows {
		if err := f.WriteCast(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteDamage logs a single damage row, if enabled.
func (f *FileWriter) WriteDamage(row DamageRow) error {
	if f.damageEnc == nil {
		return nil
	}
	return f.damageEnc.Encode(row)
}

// Close closes any underlying files.
func (f *FileWriter) Close() error {
	var err error
	if f.castFile != nil {
		if e := f.castFile.Close(); e != nil && err == nil {
			err = e
		}
	}
	if f.damageFile != nil {
		if e := f.damageFile.Close(); e != nil && err == nil {
			err = e
		}
	}
	return err
}
