package service

const (
	FieldCategory = "category"
	FieldAge      = "age"
	FieldHeight   = "height"
	FieldWeight   = "weight"

	// cacheKeyPrefix namespaces prediction entries in a shared cache.
	cacheKeyPrefix = "stuntify:prediction:v1"

	cacheHit   = "hit"
	cacheMiss  = "miss"
	cacheError = "error"
)
