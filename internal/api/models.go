package api

import "github.com/flagvault/flagvault-go/internal/domain"

// flagStateResponse is the body of the single-flag endpoint. A missing
// enabled field decodes to false, which is treated as disabled rather than
// an error.
type flagStateResponse struct {
	Enabled bool `json:"enabled"`
}

// flagListResponse is the body of the list-all-flags endpoint.
type flagListResponse struct {
	Flags []flagPayload `json:"flags"`
}

// flagPayload is a single flag definition on the wire.
type flagPayload struct {
	Key               string  `json:"key"`
	IsEnabled         bool    `json:"isEnabled"`
	Name              string  `json:"name"`
	RolloutPercentage *int    `json:"rolloutPercentage"`
	RolloutSeed       *string `json:"rolloutSeed"`
}

func (p flagPayload) toDomain() domain.FlagDefinition {
	return domain.FlagDefinition{
		Key:               p.Key,
		Enabled:           p.IsEnabled,
		Name:              p.Name,
		RolloutPercentage: p.RolloutPercentage,
		RolloutSeed:       p.RolloutSeed,
	}
}
