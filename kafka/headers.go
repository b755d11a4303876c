package kafka

import (
	"github.com/google/uuid"
)

// enrichHeaders builds the final header set for an outbound message. The
// merge order is: headers copied from the upstream message (when relaying),
// then explicit headers on top (explicit wins on conflict). Nil-valued
// entries are stripped afterwards, so an explicit nil removes an inherited
// header. A guid correlation identifier is injected when absent.
//
// The returned keyOverride is the upstream message's key; callers adopt it
// only when no explicit key was given.
func enrichHeaders(explicit Headers, upstream *Message) (headers Headers, keyOverride []byte) {
	headers = make(Headers, len(explicit)+1)

	if upstream != nil {
		for k, v := range upstream.Headers {
			headers[k] = v
		}
		keyOverride = upstream.Key
	}

	for k, v := range explicit {
		headers[k] = v
	}

	for k, v := range headers {
		if v == nil {
			delete(headers, k)
		}
	}

	if _, ok := headers[HeaderGUID]; !ok {
		headers[HeaderGUID] = []byte(uuid.NewString())
	}

	return headers, keyOverride
}
