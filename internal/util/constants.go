package util

const DateFormat = "2006-01-02"

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

// 文件上传相关常量
const (
	MaxCoverSize    = 2 << 20
	CoverObjectPath = "games"
)

var (
	AllowedImageTypes      = []string{"image/jpeg", "image/png", "image/gif"}
	AllowedImageExtensions = []string{".jpg", ".jpeg", ".png", ".gif"}
)

// 排行榜与列表上限
const (
	GlobalLeaderboardLimit   = 100
	GameLeaderboardLimit     = 100
	PersonalLeaderboardLimit = 50
	CatalogPageSize          = 12
	UserSearchLimit          = 10
	UserSearchMinLength      = 2
)
