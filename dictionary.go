package texturize

// The marker dictionary is a fixed codebook of 6x6-bit patterns. Each
// entry is packed into 5 bytes: the first four bytes carry 32 bits
// MSB-first, the fifth byte carries the remaining 4 bits in its low
// nibble (again MSB-first). Unpacked bits fill the grid in row-major
// order. Printed marker artwork and this table must agree bit for bit,
// so the packing order is part of the wire format and must not change.
//
// The codebook was generated so that any two entries differ by at
// least 8 bits under every combination of 90-degree rotations, and
// every entry differs from its own rotations by at least 8 bits. With
// the detector's default tolerance of 3 bits a sampled pattern can
// therefore never match two distinct (id, rotation) pairs.

// DictionarySize is the number of marker IDs in the codebook.
// Valid IDs are 0..DictionarySize-1.
const DictionarySize = 100

// markerBits is the number of payload bits per marker.
const markerBits = 36

var dictionary = [DictionarySize][5]byte{
	{0x05, 0x42, 0x5b, 0x7b, 0x02}, {0x0f, 0xbb, 0x3e, 0x84, 0x0e}, {0xcf, 0x59, 0x13, 0xf1, 0x03}, {0xee, 0xb1, 0x74, 0xf6, 0x04},
	{0x4c, 0xa3, 0x74, 0x17, 0x0a}, {0x1e, 0x00, 0x45, 0xdc, 0x0e}, {0x80, 0x01, 0xa6, 0x56, 0x06}, {0x2a, 0x08, 0x25, 0xac, 0x0b},
	{0x43, 0xf6, 0x58, 0x22, 0x06}, {0xab, 0xaf, 0xe6, 0x86, 0x00}, {0x56, 0xeb, 0x11, 0x35, 0x0c}, {0x48, 0xf6, 0x1f, 0x03, 0x07},
	{0x18, 0xaf, 0x34, 0xe8, 0x01}, {0x69, 0x37, 0xf5, 0xa1, 0x09}, {0x7d, 0x3c, 0xca, 0x14, 0x01}, {0x6f, 0xb4, 0x6a, 0x84, 0x04},
	{0xc5, 0x87, 0x5d, 0x21, 0x04}, {0x6c, 0xe5, 0xca, 0x60, 0x01}, {0x3e, 0x3a, 0x6c, 0xfc, 0x0e}, {0x26, 0x45, 0xec, 0x11, 0x07},
	{0x81, 0xf9, 0xae, 0x58, 0x0a}, {0xb7, 0xf5, 0x4c, 0xdf, 0x07}, {0x3c, 0x3c, 0x08, 0x2e, 0x0a}, {0x48, 0x63, 0x1a, 0xf8, 0x04},
	{0x72, 0xf3, 0x91, 0x5c, 0x0b}, {0x9b, 0x49, 0x9b, 0x03, 0x07}, {0xb5, 0x31, 0x48, 0x2a, 0x01}, {0x8e, 0x2e, 0x0a, 0x81, 0x0b},
	{0x02, 0xb2, 0x26, 0x97, 0x0f}, {0xf9, 0x80, 0x8b, 0x92, 0x0c}, {0xe6, 0x2a, 0xe0, 0x37, 0x01}, {0x7f, 0xc2, 0x56, 0x9f, 0x09},
	{0xc2, 0x37, 0xca, 0x40, 0x03}, {0x3e, 0x14, 0xf0, 0xd1, 0x08}, {0xe6, 0xae, 0xa5, 0xff, 0x01}, {0xc5, 0xf3, 0x3d, 0xa4, 0x09},
	{0xd3, 0x54, 0xa1, 0x4f, 0x0e}, {0xe7, 0xe9, 0xd9, 0x2c, 0x08}, {0xbe, 0xde, 0xae, 0x05, 0x09}, {0xcf, 0xfd, 0x3e, 0x0b, 0x0b},
	{0x4f, 0x08, 0x86, 0x9a, 0x0c}, {0x09, 0xc7, 0xb0, 0x0a, 0x0e}, {0xa3, 0xc7, 0x08, 0xdf, 0x09}, {0x78, 0x1d, 0x9e, 0xc7, 0x07},
	{0x8a, 0x65, 0x4f, 0x1d, 0x0f}, {0x74, 0xbc, 0x42, 0xde, 0x0d}, {0xbf, 0xca, 0x61, 0xdd, 0x0c}, {0xd1, 0x5a, 0x2e, 0x56, 0x0a},
	{0x43, 0xc1, 0xdd, 0x00, 0x0d}, {0x93, 0x40, 0x62, 0xcb, 0x02}, {0x22, 0xae, 0x3b, 0x58, 0x0b}, {0xb1, 0x04, 0xdf, 0xcb, 0x01},
	{0xf3, 0xd5, 0x80, 0xc6, 0x02}, {0x65, 0xfb, 0x38, 0xdf, 0x08}, {0xbf, 0x07, 0x48, 0xb0, 0x00}, {0x08, 0xb8, 0x1b, 0xc0, 0x09},
	{0x75, 0x91, 0xd4, 0x60, 0x0e}, {0x82, 0xb8, 0xe9, 0xe5, 0x09}, {0xf9, 0x04, 0xe8, 0xe2, 0x04}, {0x4b, 0xa6, 0x50, 0xc0, 0x0a},
	{0x11, 0x5c, 0x78, 0x26, 0x04}, {0x7a, 0x63, 0xb8, 0xb2, 0x01}, {0x33, 0x5b, 0xd8, 0x87, 0x06}, {0xbb, 0x0a, 0x32, 0xe0, 0x0a},
	{0xf5, 0xaf, 0x7a, 0x52, 0x07}, {0xc2, 0x5c, 0x72, 0x48, 0x01}, {0xe2, 0x3e, 0x58, 0xfd, 0x07}, {0x2c, 0xac, 0xc1, 0x87, 0x02},
	{0xa8, 0xa4, 0xef, 0x76, 0x01}, {0x71, 0x5e, 0x5f, 0xf8, 0x09}, {0xce, 0x7c, 0x86, 0x97, 0x0f}, {0xe4, 0x6d, 0x24, 0x90, 0x08},
	{0x44, 0x7a, 0xca, 0x38, 0x08}, {0x80, 0x0a, 0xb3, 0xe4, 0x06}, {0xb4, 0xcd, 0x4a, 0x71, 0x00}, {0xf8, 0xf5, 0x10, 0xa9, 0x02},
	{0x0e, 0x5d, 0x8f, 0x09, 0x0f}, {0x04, 0xc8, 0x1e, 0x37, 0x0a}, {0xb7, 0xf6, 0x89, 0x17, 0x03}, {0x61, 0x47, 0x87, 0xa6, 0x00},
	{0x1a, 0xfd, 0x53, 0x43, 0x00}, {0x64, 0xcc, 0xe0, 0xae, 0x0a}, {0x26, 0x02, 0x8c, 0x6b, 0x05}, {0x54, 0x55, 0x2d, 0xdb, 0x09},
	{0x3f, 0xaf, 0x75, 0x14, 0x0c}, {0x42, 0x35, 0x26, 0xe9, 0x01}, {0xa1, 0xb5, 0xd4, 0x10, 0x0e}, {0x2c, 0x01, 0xa0, 0xcd, 0x07},
	{0x1e, 0x83, 0xfb, 0x40, 0x05}, {0x4a, 0xec, 0x1e, 0xb9, 0x0c}, {0x84, 0xdc, 0xf7, 0x6c, 0x08}, {0x07, 0x33, 0xb7, 0x69, 0x03},
	{0x29, 0x28, 0x20, 0x68, 0x0b}, {0x16, 0x25, 0xba, 0xd6, 0x0f}, {0x35, 0x3a, 0x55, 0xa7, 0x05}, {0x37, 0xef, 0xd5, 0x48, 0x0d},
	{0x15, 0xb5, 0x86, 0x6b, 0x0d}, {0x52, 0x47, 0x02, 0xfc, 0x0b}, {0x45, 0xb9, 0x86, 0x36, 0x08}, {0x71, 0xc6, 0x06, 0x1f, 0x0d},
}

// MarkerGrid is one unpacked marker pattern. Cell [row][col] is true
// for a light module and false for a dark module; row 0 is the top of
// the canonical (unrotated) marker.
type MarkerGrid [6][6]bool

// dictionaryGrids holds every entry unpacked once at startup so the
// per-candidate matching loop does not re-unpack 400 patterns.
var dictionaryGrids = unpackDictionary()

func unpackDictionary() [DictionarySize]MarkerGrid {
	var grids [DictionarySize]MarkerGrid
	for id := range dictionary {
		grids[id] = unpackEntry(dictionary[id])
	}
	return grids
}

func unpackEntry(packed [5]byte) MarkerGrid {
	var grid MarkerGrid
	for i := 0; i < markerBits; i++ {
		var bit byte
		if i < 32 {
			bit = (packed[i/8] >> (7 - uint(i%8))) & 1
		} else {
			// Last byte: only the low 4 bits are used, MSB-first.
			bit = (packed[4] >> (3 - uint(i-32))) & 1
		}
		grid[i/6][i%6] = bit == 1
	}
	return grid
}

// DecodeMarker returns the pattern for the given marker ID. The second
// return value is false when the ID is outside the dictionary.
func DecodeMarker(id int) (MarkerGrid, bool) {
	if id < 0 || id >= DictionarySize {
		return MarkerGrid{}, false
	}
	return dictionaryGrids[id], true
}

// rotateGrid returns the grid rotated 90 degrees clockwise.
func rotateGrid(g MarkerGrid) MarkerGrid {
	var out MarkerGrid
	for r := 0; r < 6; r++ {
		for c := 0; c < 6; c++ {
			out[r][c] = g[5-c][r]
		}
	}
	return out
}

// hammingDistance counts differing cells between two patterns.
func hammingDistance(a, b MarkerGrid) int {
	d := 0
	for r := 0; r < 6; r++ {
		for c := 0; c < 6; c++ {
			if a[r][c] != b[r][c] {
				d++
			}
		}
	}
	return d
}

// matchDictionary compares a sampled grid against every dictionary
// entry under all four rotations and returns the best (id, rotation)
// pair with its distance. rotation is the number of clockwise 90-degree
// turns applied to the sampled grid before it matched.
func matchDictionary(sampled MarkerGrid) (id, rotation, distance int) {
	id, rotation, distance = -1, 0, markerBits+1
	g := sampled
	for rot := 0; rot < 4; rot++ {
		for cand := 0; cand < DictionarySize; cand++ {
			if d := hammingDistance(g, dictionaryGrids[cand]); d < distance {
				id, rotation, distance = cand, rot, d
			}
		}
		g = rotateGrid(g)
	}
	return id, rotation, distance
}
