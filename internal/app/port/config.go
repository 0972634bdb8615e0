package port

import "deploy_config/internal/domain/entity"

// ConfigProvider defines the interface for accessing the resolved deployment configuration.
type ConfigProvider interface {
	GetConfig() *entity.DeployConfig
}
