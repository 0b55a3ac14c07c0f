package source

import "fmt"

const (
	tpacketAlignment = 16
	tpacketHdrLen    = 52 // TPACKET3_HDRLEN, rounded up
	maxBlockSize     = 4 << 20
)

// recomputeSize derives a PACKET_MMAP ring layout from a memory budget.
// Frames are aligned to TPACKET_ALIGNMENT and blocks always hold a whole
// number of frames on page boundaries. When the least common multiple of
// page and frame size exceeds maxBlockSize, frames are padded to whole pages
// instead. The block count fills bufferMB.
func recomputeSize(bufferMB, snapLen, pageSize int) (frameSize, blockSize, numBlocks int, err error) {
	switch {
	case bufferMB <= 0:
		return 0, 0, 0, fmt.Errorf("source: ring buffer size must be positive, got %d MB", bufferMB)
	case snapLen <= 0:
		return 0, 0, 0, fmt.Errorf("source: snaplen must be positive, got %d", snapLen)
	case pageSize <= 0 || pageSize%tpacketAlignment != 0:
		return 0, 0, 0, fmt.Errorf("source: page size must be a positive multiple of %d, got %d", tpacketAlignment, pageSize)
	}

	frameSize = alignUp(tpacketHdrLen+snapLen, tpacketAlignment)

	blockSize = lcm(pageSize, frameSize)
	if blockSize > maxBlockSize {
		frameSize = alignUp(frameSize, pageSize)
		blockSize = (maxBlockSize / frameSize) * frameSize
		if blockSize < frameSize {
			blockSize = frameSize
		}
	}

	numBlocks = (bufferMB << 20) / blockSize
	if numBlocks < 1 {
		numBlocks = 1
	}
	return frameSize, blockSize, numBlocks, nil
}

func alignUp(n, align int) int {
	return (n + align - 1) / align * align
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func lcm(a, b int) int {
	if a == 0 || b == 0 {
		return 0
	}
	return a / gcd(a, b) * b
}
