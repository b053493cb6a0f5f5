package health

import (
	"context"
	"database/sql"
	"time"
)

const pingTimeout = 2 * time.Second

// Status is the health payload.
type Status struct {
	OK         bool   `json:"ok"`
	Storage    string `json:"storage"`
	Database   string `json:"database,omitempty"`
	Industries int    `json:"industries"`
}

// Service encapsulates health-related checks.
type Service struct {
	DB         *sql.DB
	Industries int
}

// NewService constructs a new health service. db may be nil for in-memory storage.
func NewService(db *sql.DB, industries int) *Service {
	return &Service{DB: db, Industries: industries}
}

// Status pings the database when one is configured.
func (s *Service) Status(ctx context.Context) Status {
	st := Status{OK: true, Storage: "memory", Industries: s.Industries}
	if s.DB == nil {
		return st
	}
	st.Storage = "sql"
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := s.DB.PingContext(ctx); err != nil {
		st.OK = false
		st.Database = "unreachable"
		return st
	}
	st.Database = "ok"
	return st
}
