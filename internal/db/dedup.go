package db

import "context"

const (
	dedupKindSettlement = "settlement"
	dedupKindTimeFee    = "time_fee"
)

// SaveDedupKeys persists the recorder's settlement/time-fee dedup keys so a
// restarted process can refuse the same duplicate calls it would have
// refused before restarting.
func (s *PostgresStore) SaveDedupKeys(ctx context.Context, settlements, timeFees []string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const insertSQL = `INSERT INTO recorder_dedup_keys (kind, dedup_key) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	for _, k := range settlements {
		if _, err := tx.Exec(ctx, insertSQL, dedupKindSettlement, k); err != nil {
			return err
		}
	}
	for _, k := range timeFees {
		if _, err := tx.Exec(ctx, insertSQL, dedupKindTimeFee, k); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// LoadDedupKeys returns every persisted settlement/time-fee dedup key, for
// Recorder.ImportDedupKeys to seed a freshly constructed Recorder.
func (s *PostgresStore) LoadDedupKeys(ctx context.Context) (settlements, timeFees []string, err error) {
	rows, err := s.pool.Query(ctx, `SELECT kind, dedup_key FROM recorder_dedup_keys`)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var kind, key string
		if err := rows.Scan(&kind, &key); err != nil {
			return nil, nil, err
		}
		switch kind {
		case dedupKindSettlement:
			settlements = append(settlements, key)
		case dedupKindTimeFee:
			timeFees = append(timeFees, key)
		}
	}
	return settlements, timeFees, rows.Err()
}
