package embed

import (
	_ "embed"
)

// PersonasJSON 嵌入的默认专家人设目录
// 编译时从 personas.json 嵌入到二进制文件中
//
//go:embed personas.json
var PersonasJSON []byte
