package docker

import (
	"crypto/sha256"
	"encoding/hex"
)

// buildKeyDigestLen is the hex length of the build key digest.
const buildKeyDigestLen = 12

// BuildKey derives the serialization key for an image build. Two
// builds with the same context directory, Dockerfile and platform
// serialize against each other regardless of any other option
// differences (tags, build args, cache settings); builds differing in
// any of the three fields run concurrently.
func BuildKey(opts BuildOptions) string {
	// Fixed field order with NUL separators keeps the digest stable
	// and unambiguous across field boundaries.
	h := sha256.New()
	h.Write([]byte("context=" + opts.ContextDir))
	h.Write([]byte{0})
	h.Write([]byte("dockerfile=" + opts.Dockerfile))
	h.Write([]byte{0})
	h.Write([]byte("platform=" + opts.Platform))

	digest := hex.EncodeToString(h.Sum(nil))[:buildKeyDigestLen]
	return "docker:build:" + digest
}

// TagKey derives the serialization key for tagging. Tags serialize on
// the target reference being written, not on the source.
func TagKey(target string) string {
	return "docker:tag:" + target
}

// PushKey derives the serialization key for a push of one reference.
func PushKey(ref string) string {
	return "docker:push:" + ref
}

// PullKey derives the serialization key for a pull of one reference.
func PullKey(ref string) string {
	return "docker:pull:" + ref
}

// RemoveKey derives the serialization key for an image removal.
func RemoveKey(image string) string {
	return "docker:remove:" + image
}
