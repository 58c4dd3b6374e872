package site

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/uptrace/bun"
)

// 默认站点
const (
	DefaultSiteID     int64 = 1
	DefaultSiteDomain       = "example.com"
	DefaultSiteName         = "example.com"
)

// 模型标识，用于注册到应用注册表
const (
	AppLabel  = "sites"
	ModelName = "Site"
	TableName = "sites"
)

// Current 当前站点的公共接口，Site 与 RequestSite 都实现该接口
type Current interface {
	DomainName() string
	DisplayName() string
	String() string
}

// Site 站点数据结构
type Site struct {
	bun.BaseModel `bun:"table:sites,alias:s" json:"-" toml:"-"`

	ID     int64  `bun:"id,pk,autoincrement" json:"id" toml:"id"`
	Domain string `bun:"domain,notnull" json:"domain" toml:"domain" validate:"required,max=100,nowhitespace"` // 绑定的域名
	Name   string `bun:"name,notnull" json:"name" toml:"name" validate:"required,max=50"`                     // 显示名称
}

var _ Current = (*Site)(nil)

// NewSite 创建新站点（未持久化）
func NewSite(domain, name string) *Site {
	return &Site{
		Domain: domain,
		Name:   name,
	}
}

// DomainName 返回域名
func (s *Site) DomainName() string { return s.Domain }

// DisplayName 返回显示名称
func (s *Site) DisplayName() string { return s.Name }

func (s *Site) String() string { return s.Domain }

// Update 更新站点信息，空值保持不变
func (s *Site) Update(domain, name string) {
	if domain != "" {
		s.Domain = domain
	}
	if name != "" {
		s.Name = name
	}
}

// Validate 校验字段
func (s *Site) Validate() error {
	err := validate().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalidSite, strings.Join(msgs, "; "))
}

// BeforeAppendModel 写库前校验域名
func (s *Site) BeforeAppendModel(_ context.Context, query bun.Query) error {
	switch query.(type) {
	case *bun.InsertQuery, *bun.UpdateQuery:
		if err := ValidateDomain(s.Domain); err != nil {
			return err
		}
	}
	return nil
}

var _ bun.BeforeAppendModelHook = (*Site)(nil)

// ValidateDomain 域名不能包含任何空白字符，空值直接通过
func ValidateDomain(value string) error {
	if value == "" {
		return nil
	}
	if containsWhitespace(value) {
		return fmt.Errorf("%w: %s", ErrInvalidSite, domainWhitespaceMessage)
	}
	return nil
}

const domainWhitespaceMessage = "域名不能包含空格或制表符"

// 与 Python string.whitespace 一致
const whitespace = " \t\n\r\v\f"

func containsWhitespace(v string) bool {
	return strings.ContainsAny(v, whitespace)
}

var (
	validateOnce sync.Once
	validateInst *validator.Validate
)

func validate() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		_ = v.RegisterValidation("nowhitespace", func(fl validator.FieldLevel) bool {
			return !containsWhitespace(fl.Field().String())
		})
		validateInst = v
	})
	return validateInst
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " 不能为空"
	case "max":
		return fmt.Sprintf("%s 长度不能超过 %s", field, fe.Param())
	case "nowhitespace":
		return domainWhitespaceMessage
	default:
		return fmt.Sprintf("%s 校验失败 (%s)", field, fe.Tag())
	}
}
