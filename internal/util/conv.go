package util

import (
	"strconv"
	"strings"
)

// MustParseUint 将字符串转换为无符号整数，解析失败时返回 0
func MustParseUint(s string) uint {
	id, _ := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	return uint(id)
}

// ParseUintList 解析逗号分隔的 ID 列表，忽略无效项
func ParseUintList(s string) []uint {
	var ids []uint
	for _, part := range strings.Split(s, ",") {
		if id := MustParseUint(part); id > 0 {
			ids = append(ids, id)
		}
	}
	return ids
}
