package site

import "errors"

var (
	// ErrSiteNotFound 站点不存在
	ErrSiteNotFound = errors.New("站点不存在")
	// ErrInvalidSite 站点字段校验失败
	ErrInvalidSite = errors.New("站点数据无效")
	// ErrRequestSiteReadOnly RequestSite 不能保存或删除
	ErrRequestSiteReadOnly = errors.New("RequestSite 不支持保存或删除")
)
