// Copyright 2019 The go-ledgerd Authors
// This file is part of the go-ledgerd library.
//
// The go-ledgerd library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ledgerd library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ledgerd library. If not, see <http://www.gnu.org/licenses/>.

package common

import (
	lru "github.com/hashicorp/golang-lru"
)

// CacheType selects the eviction policy of a Cache.
type CacheType int

const (
	LRUCacheType CacheType = iota
	ARCCacheType
)

// DefaultCacheType is applied by NewCache when callers have no preference.
// No command line flag changes it.
var DefaultCacheType = LRUCacheType

// Cache is a bounded hash-keyed cache. The p2p paths use it to remember
// recently seen block hashes.
type Cache interface {
	Add(key Hash, value interface{}) (evicted bool)
	Get(key Hash) (value interface{}, ok bool)
	Contains(key Hash) bool
	Purge()
	Len() int
}

type lruCache struct {
	lru *lru.Cache
}

func (c *lruCache) Add(key Hash, value interface{}) bool {
	return c.lru.Add(key, value)
}

func (c *lruCache) Get(key Hash) (interface{}, bool) {
	return c.lru.Get(key)
}

func (c *lruCache) Contains(key Hash) bool {
	return c.lru.Contains(key)
}

func (c *lruCache) Purge() { c.lru.Purge() }

func (c *lruCache) Len() int { return c.lru.Len() }

type arcCache struct {
	arc *lru.ARCCache
}

func (c *arcCache) Add(key Hash, value interface{}) bool {
	c.arc.Add(key, value)
	return false
}

func (c *arcCache) Get(key Hash) (interface{}, bool) {
	return c.arc.Get(key)
}

func (c *arcCache) Contains(key Hash) bool {
	return c.arc.Contains(key)
}

func (c *arcCache) Purge() { c.arc.Purge() }

func (c *arcCache) Len() int { return c.arc.Len() }

// NewCache creates a cache of the default type with the given size.
func NewCache(size int) Cache {
	return NewCacheWithType(DefaultCacheType, size)
}

// NewCacheWithType creates a cache with an explicit eviction policy.
func NewCacheWithType(typ CacheType, size int) Cache {
	switch typ {
	case ARCCacheType:
		c, err := lru.NewARC(size)
		if err != nil {
			panic(err)
		}
		return &arcCache{arc: c}
	default:
		c, err := lru.New(size)
		if err != nil {
			panic(err)
		}
		return &lruCache{lru: c}
	}
}
