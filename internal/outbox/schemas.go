package outbox

const activityIngestedSchema = `{
  "type": "object",
  "title": "ActivityIngested",
  "properties": {
    "activity_id": {"type": "string"},
    "athlete_id": {"type": "string"},
    "source": {"type": "string"},
    "sport": {"type": "string"},
    "start_time": {"type": "string", "format": "date-time"},
    "duration_s": {"type": "number"},
    "tss": {"type": "number"},
    "scaled_tss": {"type": "number"}
  },
  "required": ["activity_id", "athlete_id", "source", "sport", "start_time", "duration_s"],
  "additionalProperties": false
}`

const activityReconciledSchema = `{
  "type": "object",
  "title": "ActivityReconciled",
  "properties": {
    "activity_id": {"type": "string"},
    "athlete_id": {"type": "string"},
    "superseded_ids": {"type": "array", "items": {"type": "string"}},
    "sport": {"type": "string"},
    "start_time": {"type": "string", "format": "date-time"},
    "duration_s": {"type": "number"},
    "scaled_tss": {"type": "number"},
    "occurred_at": {"type": "string", "format": "date-time"}
  },
  "required": ["activity_id", "athlete_id", "superseded_ids", "sport", "start_time", "duration_s", "occurred_at"],
  "additionalProperties": false
}`

const trainingLoadRecomputedSchema = `{
  "type": "object",
  "title": "TrainingLoadRecomputed",
  "properties": {
    "athlete_id": {"type": "string"},
    "ctl": {"type": "number"},
    "atl": {"type": "number"},
    "as_of": {"type": "string", "format": "date-time"}
  },
  "required": ["athlete_id", "ctl", "atl", "as_of"],
  "additionalProperties": false
}`
