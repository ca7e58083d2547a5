package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"

	// AttemptTimeFormat 出现在成绩页路径中，不可随区域设置变化
	AttemptTimeFormat = "2006-01-02_15-04-05"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// QuantityAll 题量参数取全部题目时的取值
const QuantityAll = "all"

// 允许上传的试题文件
var AllowedExamFileExtensions = []string{".json", ".yaml", ".yml"}
