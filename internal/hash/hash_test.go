/*
Copyright © 2024 the umcook authors.
This file is part of umcook.

umcook is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

umcook is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with umcook.  If not, see <http://www.gnu.org/licenses/>.*/

package hash

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

type record struct {
	Int  [3]int64
	Real [2]float64
}

func TestValue(t *testing.T) {
	a := record{Int: [3]int64{1, 2, 3}, Real: [2]float64{0.5, -1073741824}}
	b := a
	assert.Equal(t, Value(a), Value(b))
	assert.Len(t, Value(a), 32)

	b.Int[2] = 4
	assert.NotEqual(t, Value(a), Value(b))

	c := a
	c.Real[0] = math.NaN()
	assert.Equal(t, Value(c), Value(c))
	assert.NotEqual(t, Value(a), Value(c))
}

func TestValueFallback(t *testing.T) {
	// gob cannot encode channels.
	v := struct{ C chan int }{}
	assert.Equal(t, Value(v), Value(v))
	assert.Len(t, Value(v), 32)
	assert.NotEqual(t, Value(v), Value(struct{ C chan string }{}))
}

func TestBytes(t *testing.T) {
	assert.Equal(t, Bytes([]byte{1, 2, 3}), Bytes([]byte{1, 2, 3}))
	assert.NotEqual(t, Bytes([]byte{1, 2, 3}), Bytes([]byte{1, 2, 4}))
	assert.Equal(t, Bytes(nil), Bytes([]byte{}))
}
