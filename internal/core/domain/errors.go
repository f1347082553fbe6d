package domain

import "errors"

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidParams indicates invalid chunking parameters
	ErrInvalidParams = errors.New("invalid chunking parameters")

	// ErrEmptyInput indicates there is no text to chunk
	ErrEmptyInput = errors.New("empty input")

	// ErrExtractionEmpty indicates extraction produced no usable text
	ErrExtractionEmpty = errors.New("extracted text is empty")

	// ErrUnsupportedType indicates the content type has no extraction strategy
	ErrUnsupportedType = errors.New("unsupported content type")

	// ErrStoreInit indicates the vector index could not be initialized
	ErrStoreInit = errors.New("vector store initialization failed")

	// ErrStoreWrite indicates the vector index rejected a write
	ErrStoreWrite = errors.New("vector store write failed")

	// ErrInvalidQuestion indicates the question was empty or whitespace
	ErrInvalidQuestion = errors.New("invalid question")

	// ErrCompletion indicates the LLM completion call failed
	ErrCompletion = errors.New("completion failed")

	// ErrRender indicates PDF page rendering failed
	ErrRender = errors.New("page rendering failed")

	// ErrTranscription indicates a page transcription call failed
	ErrTranscription = errors.New("page transcription failed")

	// ErrInvalidProvider indicates an unknown AI provider was specified
	ErrInvalidProvider = errors.New("invalid provider")
)
