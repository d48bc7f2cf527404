package export

// MultiWriter fans cast and damage rows out to multiple writers.
type MultiWriter struct {
	castWriters   []CastWriter
	damageWriters []DamageWriter
}

// NewMultiWriter creates a new MultiWriter.
func NewMultiWriter(cws []CastWriter, dws []DamageWriter) *MultiWriter {
	return &MultiWriter{castWriters: cws, damageWriters: dws}
}

// WriteCast sends a cast row to all cast writers.
func (mw *MultiWriter) WriteCast(row CastRow) error {
	for _, w := range mw.castWriters {
		if err := w.WriteCast(row); err != nil {
			return err
		}
	}
	return nil
}

// WriteCasts sends multiple casts to all writers, using batch if supported.
func (mw *MultiWriter) WriteCasts(rows []CastRow) error {
	for _, w := range mw.castWriters {
		if err := writeCasts(w, rows); err != nil {
			return err
		}
	}
	return nil
}

// WriteDamage sends a damage row to all damage writers.
func (mw *MultiWriter) WriteDamage(row DamageRow) error {
	for _, w := range mw.damageWriters {
		if err := w.WriteDamage(row); err != nil {
			return err
		}
	}
	return nil
}

// WriteDamages sends multiple damage rows to all writers, using batch if supported.
func (mw *MultiWriter) WriteDamages(rows []DamageRow) error {
	for _, w := range mw.damageWriters {
		if err := writeDamages(w, rows); err != nil {
			return err
		}
	}
	return nil
}
