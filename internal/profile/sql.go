package profile

import (
	_ "embed"
)

//go:embed schema.sql
var initSchemaSQL string

const (
	initIndexesSQL = `
CREATE INDEX IF NOT EXISTS idx_events_session_time ON events (session_id, timestamp);
CREATE INDEX IF NOT EXISTS idx_snapshots_session ON snapshots (session_id)`

	insertSessionSQL = `
INSERT INTO sessions (
                      start_time,
                      mode,
                      config)
VALUES (CURRENT_TIMESTAMP, ?, ?)`

	selectSessionSQL = `
SELECT
    id,
    start_time,
    mode,
    config
FROM sessions
WHERE
    id = ?`

	insertEventSQL = `
INSERT INTO events (session_id,
                    timestamp,
                    task,
                    kind,
                    preemptions)
VALUES `

	selectEventsSQL = `
SELECT
    timestamp,
    task,
    kind,
    preemptions
FROM events
WHERE
    session_id = ?
ORDER BY timestamp`

	insertSnapshotSQL = `
INSERT INTO snapshots (session_id,
                       timestamp,
                       flight_avg_us,
                       flight_misses,
                       flight_preempts,
                       command_packets,
                       command_preempts,
                       vision_frames,
                       vision_bytes,
                       vision_preempts,
                       altitude,
                       throttle,
                       emergency)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
)
