package footlib

import "github.com/cespare/xxhash/v2"

// shardsCount has to be a power of 2.
const shardsCount = 32

func shardIndex(key string) int {
	return int(xxhash.Sum64String(key) & (shardsCount - 1))
}
