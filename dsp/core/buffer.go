package core

// FrameLen returns the common per-channel length of a planar block, or -1
// if the channels disagree. An empty block has length 0.
func FrameLen(channels [][]float64) int {
	if len(channels) == 0 {
		return 0
	}

	n := len(channels[0])
	for _, ch := range channels[1:] {
		if len(ch) != n {
			return -1
		}
	}

	return n
}
