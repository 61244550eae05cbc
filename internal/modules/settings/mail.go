package settings

import (
	"strconv"

	"github.com/chyrplite/core/internal/models"
	"github.com/chyrplite/core/internal/pkg/mail"
)

// MailConfig assembles the SMTP transport from stored settings. Called at
// send time, so edits through the settings surface apply immediately.
func (s *Service) MailConfig() mail.Config {
	values := s.readValues(
		"smtp_host", "smtp_port", "smtp_username", "smtp_password",
		"smtp_encryption", "admin_email",
	)
	port, _ := strconv.Atoi(values["smtp_port"])
	return mail.Config{
		Host:       values["smtp_host"],
		Port:       port,
		Username:   values["smtp_username"],
		Password:   values["smtp_password"],
		Encryption: values["smtp_encryption"],
		From:       values["admin_email"],
	}
}

// AdminEmail is the recipient for moderation notifications.
func (s *Service) AdminEmail() string {
	return s.readValues("admin_email")["admin_email"]
}

func (s *Service) readValues(names ...string) map[string]string {
	var rows []models.SettingModel
	if err := s.db.Where("name IN ?", names).Find(&rows).Error; err != nil {
		return map[string]string{}
	}
	out := make(map[string]string, len(rows))
	for _, row := range rows {
		out[row.Name] = row.Value
	}
	return out
}
