package repository

// KeyValueStore is durable local storage for small settings blobs.
type KeyValueStore interface {
	Get(key string) (value []byte, ok bool, err error)
	Put(key string, value []byte) error
	Delete(key string) error
}
