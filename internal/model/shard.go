package model

// CentralServerField is the JSON field carrying a shard id in payloads and responses.
const CentralServerField = "centralServer"

// Shard is one central server installation. Shards are loaded once at start
// and never mutated.
type Shard struct {
	ID          int                `json:"id"`
	URL         string             `json:"url"`
	DatabaseURL string             `json:"-"`
	Limits      map[ObjectType]int `json:"limits"`
}

// Limit returns the capacity of the shard for an object type. A missing
// entry means the shard accepts no objects of that type.
func (s *Shard) Limit(t ObjectType) int {
	return s.Limits[t]
}
