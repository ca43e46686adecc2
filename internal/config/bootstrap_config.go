package config

type BootstrapConfig interface {
	GetAdminEmail() string
	GetAdminPassword() string
}

type Bootstrap struct{}

var _ BootstrapConfig = Bootstrap{}

// GetAdminEmail is empty unless an admin principal should be seeded at startup
func (Bootstrap) GetAdminEmail() string {
	return GetEnv("ADMIN_EMAIL", "")
}

func (Bootstrap) GetAdminPassword() string {
	return GetEnv("ADMIN_PASSWORD", "")
}
