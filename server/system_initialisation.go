package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/jrsteele09/go-session-server/internal/config"
	apperrors "github.com/jrsteele09/go-session-server/internal/errors"
	"github.com/jrsteele09/go-session-server/users"
	"github.com/rs/zerolog/log"
)

const DefaultSuperAdminName = "Administrator"

// InitialiseSystem seeds the operator account named by ADMIN_EMAIL / ADMIN_PASSWORD.
// Nothing happens when either is unset or the account already exists.
func (s *Server) InitialiseSystem(ctx context.Context, config config.BootstrapConfig) error {
	email, password := config.GetAdminEmail(), config.GetAdminPassword()
	if email == "" || password == "" {
		return nil
	}

	admin, err := s.auth.Provision(ctx, email, password, DefaultSuperAdminName,
		users.RoleUser, users.RoleAdmin, users.RoleSuperUser)
	if errors.Is(err, apperrors.ErrConflict) {
		log.Debug().Str("email", users.NormaliseEmail(email)).Msg("super admin already present")
		return nil
	}
	if err != nil {
		return fmt.Errorf("[Server InitialiseSystem] failed to bootstrap super admin: %w", err)
	}

	log.Info().
		Str("principal_id", admin.ID).
		Str("email", admin.Email).
		Msg("super admin created")
	return nil
}
