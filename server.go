package forgedeck

import (
	"encoding/json"
	"fmt"

	"github.com/jpalmerr/forgedeck/internal/store"
)

// Server is one record from the status API.
//
// The API is loose about numeric types ("online" may arrive as a string), so
// Online and Max are decoded with [SafeParseInt].
type Server struct {
	Name   string `json:"name"`
	Online int    `json:"online"`
	Max    int    `json:"max"`
	Icon   string `json:"icon"`
}

// UnmarshalJSON implements json.Unmarshaler for Server.
func (s *Server) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name   string `json:"name"`
		Online any    `json:"online"`
		Max    any    `json:"max"`
		Icon   string `json:"icon"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	s.Name = raw.Name
	s.Online = SafeParseInt(raw.Online)
	s.Max = SafeParseInt(raw.Max)
	s.Icon = raw.Icon
	return nil
}

// DecodeServers parses an API response body into the ordered server list.
func DecodeServers(body []byte) ([]Server, error) {
	var servers []Server
	if err := json.Unmarshal(body, &servers); err != nil {
		return nil, fmt.Errorf("failed to decode server list: %w", err)
	}
	return servers, nil
}

func toStoreServers(in []Server) []store.Server {
	out := make([]store.Server, len(in))
	for i, s := range in {
		out[i] = store.Server(s)
	}
	return out
}

func fromStoreServers(in []store.Server) []Server {
	out := make([]Server, len(in))
	for i, s := range in {
		out[i] = Server(s)
	}
	return out
}
