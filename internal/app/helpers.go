package app

import (
	"strings"

	"go.uber.org/zap"

	"github.com/chyrplite/core/internal/config"
	jwtpkg "github.com/chyrplite/core/internal/pkg/jwt"
)

func applyRuntimeSettings(cfg *config.AppConfig, logger *zap.Logger) {
	if secret := strings.TrimSpace(cfg.JWTSecret); secret != "" {
		jwtpkg.SetSecret(secret)
	} else {
		logger.Warn("jwt_secret is empty, using built-in default secret")
	}
}
