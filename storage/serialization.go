// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package storage

import (
	"fmt"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/lostfound/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, varint.Uint64.Size(uint64(id)))
	varint.Uint64.Marshal(uint64(id), buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	d := decoder{bs: data}
	id := d.id()
	return id, d.finish()
}

// MarshalItem serializes an Item to bytes.
func MarshalItem(item *core.Item) []byte {
	size := varint.Uint64.Size(uint64(item.Id)) +
		ord.String.Size(item.Title) +
		ord.String.Size(item.Description) +
		ord.String.Size(item.Category) +
		ord.String.Size(item.Location) +
		varint.Int.Size(int(item.Type)) +
		timeSize(item.CreatedAt) +
		varint.Uint64.Size(uint64(item.OwnerId)) +
		ord.String.Size(item.ImageRef)

	e := encoder{bs: make([]byte, size)}
	e.id(item.Id)
	e.string(item.Title)
	e.string(item.Description)
	e.string(item.Category)
	e.string(item.Location)
	e.int(int(item.Type))
	e.time(item.CreatedAt)
	e.id(item.OwnerId)
	e.string(item.ImageRef)
	return e.bs
}

// UnmarshalItem deserializes an Item from bytes.
func UnmarshalItem(data []byte) (*core.Item, error) {
	d := decoder{bs: data}
	item := &core.Item{
		Id:          d.id(),
		Title:       d.string(),
		Description: d.string(),
		Category:    d.string(),
		Location:    d.string(),
		Type:        core.ItemType(d.int()),
		CreatedAt:   d.time(),
		OwnerId:     d.id(),
		ImageRef:    d.string(),
	}
	if err := d.finish(); err != nil {
		return nil, err
	}
	return item, nil
}

// MarshalUser serializes a User to bytes.
func MarshalUser(user *core.User) []byte {
	size := varint.Uint64.Size(uint64(user.Id)) +
		ord.String.Size(user.Name) +
		ord.String.Size(user.Email) +
		timeSize(user.CreatedAt)

	e := encoder{bs: make([]byte, size)}
	e.id(user.Id)
	e.string(user.Name)
	e.string(user.Email)
	e.time(user.CreatedAt)
	return e.bs
}

// UnmarshalUser deserializes a User from bytes.
func UnmarshalUser(data []byte) (*core.User, error) {
	d := decoder{bs: data}
	user := &core.User{
		Id:        d.id(),
		Name:      d.string(),
		Email:     d.string(),
		CreatedAt: d.time(),
	}
	if err := d.finish(); err != nil {
		return nil, err
	}
	return user, nil
}

// MarshalNotification serializes a Notification to bytes.
func MarshalNotification(n *core.Notification) []byte {
	size := varint.Uint64.Size(uint64(n.Id)) +
		varint.Uint64.Size(uint64(n.RecipientId)) +
		varint.Uint64.Size(uint64(n.MatchItemId)) +
		ord.String.Size(n.Message) +
		ord.Bool.Size(n.Read) +
		timeSize(n.CreatedAt)

	e := encoder{bs: make([]byte, size)}
	e.id(n.Id)
	e.id(n.RecipientId)
	e.id(n.MatchItemId)
	e.string(n.Message)
	e.bool(n.Read)
	e.time(n.CreatedAt)
	return e.bs
}

// UnmarshalNotification deserializes a Notification from bytes.
func UnmarshalNotification(data []byte) (*core.Notification, error) {
	d := decoder{bs: data}
	n := &core.Notification{
		Id:          d.id(),
		RecipientId: d.id(),
		MatchItemId: d.id(),
		Message:     d.string(),
		Read:        d.bool(),
		CreatedAt:   d.time(),
	}
	if err := d.finish(); err != nil {
		return nil, err
	}
	return n, nil
}

// Zero times are stored as 0 so they survive a round trip.
func timeMicros(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMicro()
}

func timeSize(t time.Time) int {
	return varint.Int64.Size(timeMicros(t))
}

type encoder struct {
	bs []byte
	n  int
}

func (e *encoder) id(v core.ID) {
	e.n += varint.Uint64.Marshal(uint64(v), e.bs[e.n:])
}

func (e *encoder) int(v int) {
	e.n += varint.Int.Marshal(v, e.bs[e.n:])
}

func (e *encoder) string(v string) {
	e.n += ord.String.Marshal(v, e.bs[e.n:])
}

func (e *encoder) bool(v bool) {
	e.n += ord.Bool.Marshal(v, e.bs[e.n:])
}

func (e *encoder) time(v time.Time) {
	e.n += varint.Int64.Marshal(timeMicros(v), e.bs[e.n:])
}

// decoder reads fields in order. After the first error every read returns the
// zero value; finish reports the error.
type decoder struct {
	bs  []byte
	n   int
	err error
}

func (d *decoder) id() core.ID {
	if d.err != nil {
		return 0
	}
	v, n, err := varint.Uint64.Unmarshal(d.bs[d.n:])
	d.n += n
	d.err = err
	return core.ID(v)
}

func (d *decoder) int() int {
	if d.err != nil {
		return 0
	}
	v, n, err := varint.Int.Unmarshal(d.bs[d.n:])
	d.n += n
	d.err = err
	return v
}

func (d *decoder) string() string {
	if d.err != nil {
		return ""
	}
	v, n, err := ord.String.Unmarshal(d.bs[d.n:])
	d.n += n
	d.err = err
	return v
}

func (d *decoder) bool() bool {
	if d.err != nil {
		return false
	}
	v, n, err := ord.Bool.Unmarshal(d.bs[d.n:])
	d.n += n
	d.err = err
	return v
}

func (d *decoder) time() time.Time {
	if d.err != nil {
		return time.Time{}
	}
	v, n, err := varint.Int64.Unmarshal(d.bs[d.n:])
	d.n += n
	d.err = err
	if err != nil || v == 0 {
		return time.Time{}
	}
	return time.UnixMicro(v).UTC()
}

func (d *decoder) finish() error {
	if d.err != nil {
		return fmt.Errorf("%w: %w", ErrSerializationFailed, d.err)
	}
	if d.n != len(d.bs) {
		return fmt.Errorf("%w: %d trailing bytes", ErrSerializationFailed, len(d.bs)-d.n)
	}
	return nil
}
