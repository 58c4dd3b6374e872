package config

import "errors"

// ErrImproperlyConfigured 配置错误，所有配置类失败都包装该错误
var ErrImproperlyConfigured = errors.New("配置错误")
