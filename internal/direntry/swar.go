package direntry

import (
	"math/bits"
	"unsafe"
)

// linuxDirentHeader is the fixed-size portion of struct linux_dirent64:
//
//	struct linux_dirent64 {
//	    ino64_t        d_ino;
//	    off64_t        d_off;
//	    unsigned short d_reclen;
//	    unsigned char  d_type;
//	    char           d_name[];
//	};
const linuxDirentHeaderSize = 19 // 8 + 8 + 2 + 1

// SWAR masks for the classic "has zero byte" trick (Arndt, Matters
// Computational): subtracting one from every byte and masking off the
// borrow-propagated high bits reveals a zero byte without a per-byte loop.
const (
	loMask64 = 0x0101010101010101
	hiMask64 = 0x8080808080808080
)

// hasZeroByte reports whether any byte of w is zero.
func hasZeroByte(w uint64) bool {
	return (w-loMask64)&^w&hiMask64 != 0
}

// firstZeroByteIndex returns the memory offset (0 = the lowest-addressed
// byte of the word as it was read from memory) of the first zero byte in w,
// or -1 if there is none. Assumes hasZeroByte(w) already reported true, or
// tolerates a false negative by returning -1.
func firstZeroByteIndex(w uint64) int {
	masked := (w - loMask64) &^ w & hiMask64
	if masked == 0 {
		return -1
	}
	if isLittleEndian {
		return bits.TrailingZeros64(masked) / 8
	}
	return bits.LeadingZeros64(masked) / 8
}

var isLittleEndian = func() bool {
	var x uint16 = 1
	return *(*byte)(unsafe.Pointer(&x)) == 1
}()

// LinuxNameLen computes, in O(1) with respect to the name length, the byte
// length of a NUL-terminated, 8-byte-aligned filename embedded in a Linux
// getdents64 record, given the record's reclen and the raw record bytes.
//
// The kernel pads d_name with NUL bytes out to an 8-byte boundary measured
// from the start of the record, so the terminator (and the record's padding)
// live entirely within the record's final 8-byte word. Reading that word
// once and running the SWAR haszero test against it locates the terminator
// without a linear scan of the name — this is the routine spec.md's DirEntry
// section describes, grounded on the has-zero-byte derivation carried in the
// upstream Rust implementation this system was distilled from.
func LinuxNameLen(record []byte, reclen int) int {
	nameStart := linuxDirentHeaderSize
	if reclen <= nameStart {
		return 0
	}
	// The final 8-byte word of the record; reclen is always a multiple of 8
	// per the kernel's own alignment, and reclen <= len(record) is a
	// precondition enforced by the caller.
	wordStart := reclen - 8
	if wordStart < nameStart {
		// Minimum-length record: name plus terminator fits before the
		// aligned boundary but overlaps the header. Fall back to a direct
		// scan over the (very short) remaining bytes.
		return scanNameLen(record[nameStart:reclen])
	}
	word := *(*uint64)(unsafe.Pointer(&record[wordStart]))
	if !hasZeroByte(word) {
		// Defensive fallback: kernels are expected to always leave a NUL in
		// the final word, but a nonstandard filesystem shim might not.
		return scanNameLen(record[nameStart:reclen])
	}
	zeroIdx := firstZeroByteIndex(word)
	// Position of the terminator, absolute within the record.
	termPos := wordStart + zeroIdx
	if termPos < nameStart {
		return scanNameLen(record[nameStart:reclen])
	}
	return termPos - nameStart
}

// scanNameLen is the linear fallback used only for the minimum-length
// record case and as a defensive backstop; the SWAR path above is the one
// exercised on every normal-length entry.
func scanNameLen(name []byte) int {
	for i, c := range name {
		if c == 0 {
			return i
		}
	}
	return len(name)
}

// ParsedRecord is one entry decoded from a getdents64 buffer.
type ParsedRecord struct {
	Name  string
	Type  FileType
	Inode uint64
}

// ParseGetdents64 walks a raw getdents64 buffer (n valid bytes) and returns
// its non-"."/".." entries. The result is built in dst's backing array
// starting from dst[:0], so any entries dst held before are overwritten; the
// caller reuses dst across calls to avoid a per-buffer allocation.
func ParseGetdents64(buf []byte, n int, dst []ParsedRecord) []ParsedRecord {
	entries := dst[:0]
	offset := 0

	for offset+linuxDirentHeaderSize <= n {
		reclen := int(*(*uint16)(unsafe.Pointer(&buf[offset+16])))
		if reclen == 0 || offset+reclen > n {
			break
		}
		dtype := buf[offset+18]

		nameLen := LinuxNameLen(buf[offset:offset+reclen], reclen)
		nameStart := offset + linuxDirentHeaderSize
		nameEnd := nameStart + nameLen
		if nameEnd > n {
			nameEnd = n
		}
		name := string(buf[nameStart:nameEnd])

		if name != "." && name != ".." {
			ino := *(*uint64)(unsafe.Pointer(&buf[offset]))
			entries = append(entries, ParsedRecord{
				Name:  name,
				Type:  FromDType(dtype),
				Inode: ino,
			})
		}

		offset += reclen
	}

	return entries
}
