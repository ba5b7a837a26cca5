package auth

import (
	"hash/crc32"
	"sort"
	"strconv"
	"sync"
)

// Ring 一致性哈希环，用于把 token 缓存分摊到多个鉴权节点
type Ring struct {
	hash       func(data []byte) uint32
	replicas   int
	keys       []int // 已排序的虚拟节点哈希
	hashMap    map[int]string
	mu         sync.RWMutex
	nodeLookup map[string]struct{}
}

// NewRing 创建哈希环，nodes 为空时生成一个默认节点，避免空环
func NewRing(nodes []string, replicas int) *Ring {
	if replicas <= 0 {
		replicas = 50
	}
	if len(nodes) == 0 {
		nodes = []string{"auth-node-default"}
	}
	r := &Ring{
		hash:       crc32.ChecksumIEEE,
		replicas:   replicas,
		hashMap:    make(map[int]string),
		nodeLookup: make(map[string]struct{}),
	}
	r.Add(nodes...)
	return r
}

// Add 批量添加节点
func (r *Ring) Add(nodes ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, node := range nodes {
		if _, exists := r.nodeLookup[node]; exists {
			continue
		}
		r.nodeLookup[node] = struct{}{}
		for i := 0; i < r.replicas; i++ {
			hash := int(r.hash([]byte(node + "#" + strconv.Itoa(i))))
			r.keys = append(r.keys, hash)
			r.hashMap[hash] = node
		}
	}
	sort.Ints(r.keys)
}

// GetNode 根据 key 获取负责的节点
func (r *Ring) GetNode(key string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.keys) == 0 {
		return ""
	}
	hash := int(r.hash([]byte(key)))
	idx := sort.Search(len(r.keys), func(i int) bool { return r.keys[i] >= hash })
	if idx == len(r.keys) {
		idx = 0
	}
	return r.hashMap[r.keys[idx]]
}
