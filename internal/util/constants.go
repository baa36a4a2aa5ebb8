package util

// 存储后端类型，对应配置 storage.type
const (
	StorageLocal = "local"
	StorageMinio = "minio"
)

// 录音上传相关常量
const (
	MimeAudio       = "audio/"
	MimeOctetStream = "application/octet-stream"
)

var (
	AllowedAudioExtensions = []string{".mp3", ".wav", ".m4a", ".ogg", ".webm", ".aac"}
)
