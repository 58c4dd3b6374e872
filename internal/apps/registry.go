// Package apps 维护已知应用及其模型，并解析 app_label.model_name 形式的模型配置。
package apps

import (
	"fmt"
	"strings"
	"sync"

	"sites/internal/config"
)

// SiteModelSetting 站点模型配置项名称
const SiteModelSetting = "SITE_MODEL"

// Registry 应用注册表
type Registry struct {
	mu        sync.RWMutex
	apps      map[string]map[string]struct{} // app_label -> model names
	installed map[string]struct{}
}

// NewRegistry 创建注册表，installed 为配置中的 installed_apps
func NewRegistry(installed []string) *Registry {
	r := &Registry{
		apps:      make(map[string]map[string]struct{}),
		installed: make(map[string]struct{}, len(installed)),
	}
	for _, label := range installed {
		r.installed[label] = struct{}{}
	}
	return r
}

// Register 注册应用及其声明的模型
func (r *Registry) Register(appLabel string, models ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.apps[appLabel]
	if !ok {
		set = make(map[string]struct{})
		r.apps[appLabel] = set
	}
	for _, m := range models {
		set[strings.ToLower(m)] = struct{}{}
	}
}

// Installed 应用是否已注册且出现在 installed_apps 中
func (r *Registry) Installed(appLabel string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.apps[appLabel]; !ok {
		return false
	}
	_, ok := r.installed[appLabel]
	return ok
}

// FormatAppModel 将配置值拆分为 (app_label, model_name)
func FormatAppModel(setting, value string) (string, string, error) {
	parts := strings.Split(value, ".")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: %s 必须是 'app_label.model_name' 的形式", config.ErrImproperlyConfigured, setting)
	}
	return parts[0], parts[1], nil
}

// Model 已解析的模型引用
type Model struct {
	AppLabel string
	Name     string
}

// String 返回 app_label.model_name
func (m Model) String() string {
	return m.AppLabel + "." + m.Name
}

// SiteModel 解析 SITE_MODEL 指向的模型，模型未注册时返回配置错误
func (r *Registry) SiteModel(value string) (Model, error) {
	appLabel, modelName, err := FormatAppModel(SiteModelSetting, value)
	if err != nil {
		return Model{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	models, ok := r.apps[appLabel]
	if !ok {
		return Model{}, fmt.Errorf("%w: %s 指向的模型 '%s' 未安装", config.ErrImproperlyConfigured, SiteModelSetting, value)
	}
	if _, ok := models[strings.ToLower(modelName)]; !ok {
		return Model{}, fmt.Errorf("%w: %s 指向的模型 '%s' 未安装", config.ErrImproperlyConfigured, SiteModelSetting, value)
	}
	return Model{AppLabel: appLabel, Name: modelName}, nil
}

// SiteApp 解析 SITE_MODEL 所属的应用，应用未注册或未出现在 installed_apps 中时返回配置错误
func (r *Registry) SiteApp(value string) (string, error) {
	appLabel, _, err := FormatAppModel(SiteModelSetting, value)
	if err != nil {
		return "", err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.apps[appLabel]; !ok {
		return "", fmt.Errorf("%w: %s 指向的应用 '%s' 未安装", config.ErrImproperlyConfigured, SiteModelSetting, appLabel)
	}
	if _, ok := r.installed[appLabel]; !ok {
		return "", fmt.Errorf("%w: %s 指向的应用 '%s' 不在 installed_apps 中", config.ErrImproperlyConfigured, SiteModelSetting, appLabel)
	}
	return appLabel, nil
}
