package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCache_SetGet(t *testing.T) {
	SetCache("k1", "v1", time.Minute)

	val, ok := GetCache("k1")
	assert.True(t, ok)
	assert.Equal(t, "v1", val)

	_, ok = GetCache("missing")
	assert.False(t, ok)
}

func TestCache_Expiration(t *testing.T) {
	// 过期时间设在过去，读取时懒删除
	SetCache("k2", "v2", -time.Second)

	_, ok := GetCache("k2")
	assert.False(t, ok)

	// 懒删除后条目不再存在
	_, loaded := memoryCache.Load("k2")
	assert.False(t, loaded)
}

func TestCache_Delete(t *testing.T) {
	SetCache("k3", "v3", time.Minute)
	DeleteCache("k3")

	_, ok := GetCache("k3")
	assert.False(t, ok)
}
