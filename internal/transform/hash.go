/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package transform

import (
	"encoding/binary"
	"encoding/hex"
	"hash/fnv"
	"math"
)

// Hash is a 128-bit content digest of a transform's parameters.
type Hash [16]byte

// IsZero reports whether h is the zero value, which no Transform produces
// in practice and PointIndex uses as "nothing indexed yet".
func (h Hash) IsZero() bool { return h == Hash{} }

func (h Hash) String() string { return hex.EncodeToString(h[:]) }

func hashParams(p Params, mode ValidationMode) Hash {
	var buf [8*9 + 8 + 4]byte
	b := buf[:0]
	for _, f := range [...]float64{
		p.Scale,
		p.CenterOffsetX, p.CenterOffsetY,
		p.PanOffsetX, p.PanOffsetY,
		p.ManualOffsetX, p.ManualOffsetY,
		p.ImageScaleX, p.ImageScaleY,
	} {
		b = binary.LittleEndian.AppendUint64(b, math.Float64bits(f))
	}
	b = binary.LittleEndian.AppendUint64(b, uint64(p.DisplayHeight))
	b = append(b, boolByte(p.FlipY), boolByte(p.ScaleToImage), byte(mode), 0)

	h := fnv.New128a()
	_, _ = h.Write(b)
	var out Hash
	copy(out[:], h.Sum(nil))
	return out
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
