package errors

// StorageError is a specialized error type for failures of the underlying ordered store.
type StorageError struct {
	*baseError
	collection string
	path       string
}

// NewStorageError creates a new storage-specific error with the provided context.
func NewStorageError(err error, code ErrorCode, msg string) *StorageError {
	return &StorageError{baseError: NewBaseError(err, code, msg)}
}

// WithDetail adds contextual information.
func (se *StorageError) WithDetail(key string, value any) *StorageError {
	se.baseError.WithDetail(key, value)
	return se
}

// WithCollection sets which collection was involved in the error.
func (se *StorageError) WithCollection(collection string) *StorageError {
	se.collection = collection
	return se
}

// WithPath captures which filesystem path was being processed during the error.
func (se *StorageError) WithPath(path string) *StorageError {
	se.path = path
	return se
}

// Collection returns the collection name where the error occurred.
func (se *StorageError) Collection() string {
	return se.collection
}

// Path returns the filesystem path of the collection directory.
func (se *StorageError) Path() string {
	return se.path
}
