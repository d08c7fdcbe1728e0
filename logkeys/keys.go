// Package logkeys names the structured log fields emitted by memo_ive_go.
package logkeys

const (
	delimiter = "."

	Prefix = "memo"

	CachePrefix = Prefix + delimiter + "cache"

	CacheName    = CachePrefix + delimiter + "name"
	CacheID      = CachePrefix + delimiter + "id"
	CacheEntries = CachePrefix + delimiter + "entries"
	CacheEnabled = CachePrefix + delimiter + "enabled"

	KeyPrefix = Prefix + delimiter + "key"

	KeyDigest = KeyPrefix + delimiter + "digest"

	RegistryPrefix = Prefix + delimiter + "registry"

	RegistryMethod = RegistryPrefix + delimiter + "method"
	RegistrySize   = RegistryPrefix + delimiter + "size"
	RegistryType   = RegistryPrefix + delimiter + "type"

	ObjectPrefix = Prefix + delimiter + "object"

	ObjectType        = ObjectPrefix + delimiter + "type"
	ObjectLocked      = ObjectPrefix + delimiter + "locked"
	ObjectOperation   = ObjectPrefix + delimiter + "operation"
	ObjectClassScoped = ObjectPrefix + delimiter + "class_scoped"
	ObjectDependents  = ObjectPrefix + delimiter + "dependents"
)
