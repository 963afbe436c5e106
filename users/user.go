// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package users

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	gerrors "github.com/tochemey/sketcd/errors"
)

// User is the record stored under the repository namespace.
type User struct {
	// ID is assigned by the repository on creation and never changes
	ID uuid.UUID `json:"id"`
	// Title is a short free text
	Title string `json:"title"`
	// Author is a short free text
	Author string `json:"author"`
}

// Key returns the store key of the record with the given id.
// Canonical UUID strings are fixed length, so no separator is needed
// between the namespace and the id.
func Key(namespace string, id uuid.UUID) string {
	return namespace + id.String()
}

func encode(user *User) ([]byte, error) {
	return json.Marshal(user)
}

// decode parses a stored value and checks it has the User shape.
// When the key is known, the embedded id must match the id encoded in it.
func decode(namespace, key string, value []byte) (*User, error) {
	if !gjson.ValidBytes(value) {
		return nil, gerrors.NewDecodeError(key, errors.New("value is not valid JSON"))
	}

	doc := gjson.ParseBytes(value)
	if !doc.IsObject() {
		return nil, gerrors.NewDecodeError(key, errors.New("value is not a JSON object"))
	}

	fields := doc.Map()
	for _, name := range []string{"id", "title", "author"} {
		field, ok := fields[name]
		if !ok {
			return nil, gerrors.NewDecodeError(key, fmt.Errorf("field %q is missing", name))
		}
		if field.Type != gjson.String {
			return nil, gerrors.NewDecodeError(key, fmt.Errorf("field %q is not a string", name))
		}
	}

	id, err := uuid.Parse(fields["id"].Str)
	if err != nil {
		return nil, gerrors.NewDecodeError(key, fmt.Errorf("field \"id\" is not a UUID: %w", err))
	}

	if key != Key(namespace, id) {
		return nil, gerrors.NewDecodeError(key, fmt.Errorf("embedded id %s does not match the key", id))
	}

	return &User{
		ID:     id,
		Title:  fields["title"].Str,
		Author: fields["author"].Str,
	}, nil
}
