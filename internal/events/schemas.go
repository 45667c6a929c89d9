package events

const rosterChangedSchema = `{
  "type": "object",
  "title": "RosterChanged",
  "properties": {
    "event_id": {"type": "string"},
    "activity": {"type": "string"},
    "email": {"type": "string"},
    "action": {"type": "string", "enum": ["signup", "unregister"]},
    "occurred_at": {"type": "string", "format": "date-time"}
  },
  "required": ["event_id", "activity", "email", "action", "occurred_at"],
  "additionalProperties": false
}`
