package searchlog

const createRunTable = `
CREATE TABLE IF NOT EXISTS runs (
  id varchar primary key,
  class string not null,
  bits int not null,
  seed string not null,
  candidates string not null,
  workers int,
  trials int,
  duration_ms int,
  created_at datetime
)`

const createSquareTable = `
CREATE TABLE IF NOT EXISTS squares (
  run_id varchar not null references runs(id),
  square string not null,
  magic string not null,
  trials int,
  mask_bits int,
  combinations int,
  distinct_attacks int,
  duration_us int,
  PRIMARY KEY (run_id, square)
)`

const createClassSummary = `
CREATE VIEW IF NOT EXISTS class_summary (
  class, bits, runs, avg_trials, max_trials
) AS
SELECT class, bits, COUNT(*), AVG(trials), MAX(trials)
 FROM runs
 GROUP BY class, bits
`

const insertRun = `
INSERT INTO runs (id, class, bits, seed, candidates, workers, trials, duration_ms, created_at)
VALUES (:id, :class, :bits, :seed, :candidates, :workers, :trials, :duration_ms, :created_at)
`

const insertSquare = `
INSERT INTO squares (run_id, square, magic, trials, mask_bits, combinations, distinct_attacks, duration_us)
VALUES (:run_id, :square, :magic, :trials, :mask_bits, :combinations, :distinct_attacks, :duration_us)
`

const selectRuns = `
SELECT id, class, bits, seed, candidates, workers, trials, duration_ms, created_at
 FROM runs
 ORDER BY created_at DESC
 LIMIT ?
`

const selectSquares = `
SELECT run_id, square, magic, trials, mask_bits, combinations, distinct_attacks, duration_us
 FROM squares
 WHERE run_id = ?
 ORDER BY trials DESC
`

const selectSummary = `
SELECT class, bits, runs, avg_trials, max_trials FROM class_summary ORDER BY class, bits
`
