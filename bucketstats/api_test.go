// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

package bucketstats

import (
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// a structure containing all of the bucketstats statistics types and other
// fields; useful for testing
type allStatTypes struct {
	MyName   string // not a statistic
	bar      int    // also not a statistic
	Total1   Total
	Average1 Average
	Bucket1  BucketLog2Round
}

// verify that all of the bucketstats statistics types satisfy the appropriate
// interface (this is really a compile time test; it fails if they don't)
func TestBucketStatsInterfaces(t *testing.T) {
	var (
		Total1       Total
		Average1     Average
		Bucket2      BucketLog2Round
		TotalIface   Totaler
		AverageIface Averager
		BucketIface  Bucketer
	)

	TotalIface = &Total1
	TotalIface = &Average1
	AverageIface = &Average1
	BucketIface = &Bucket2

	AverageIface = BucketIface
	TotalIface = AverageIface
	_ = TotalIface
}

func TestRegister(t *testing.T) {
	assert := assert.New(t)

	var myStats = allStatTypes{
		Total1:   Total{Name: "mytotaler"},
		Average1: Average{Name: "First Average"},
	}
	Register("main", "myStats", &myStats)
	defer UnRegister("main", "myStats")

	// names are scrubbed or defaulted to the field name
	assert.Equal("mytotaler", myStats.Total1.Name)
	assert.Equal("First_Average", myStats.Average1.Name)
	assert.Equal("Bucket1", myStats.Bucket1.Name)
	assert.Equal(uint(65), myStats.Bucket1.NBucket)

	// registering the same group twice panics
	assert.Panics(func() { Register("main", "myStats", &myStats) })

	// both names empty panics
	var otherStats allStatTypes
	assert.Panics(func() { Register("", "", &otherStats) })

	// not a pointer to a struct
	assert.Panics(func() { Register("main", "notStruct", otherStats) })

	// duplicate statistic names
	var dupStats = allStatTypes{
		Total1:   Total{Name: "same"},
		Average1: Average{Name: "same"},
	}
	assert.Panics(func() { Register("main", "dupStats", &dupStats) })

	// unexported statistics
	var hiddenStats struct {
		hidden Total
	}
	assert.Panics(func() { Register("main", "hiddenStats", &hiddenStats) })

	// after UnRegister the name can be reused
	UnRegister("main", "myStats")
	var againStats allStatTypes
	Register("main", "myStats", &againStats)
}

func TestTotalAverage(t *testing.T) {
	assert := assert.New(t)

	var myStats allStatTypes
	Register("", "totalAverage", &myStats)
	defer UnRegister("", "totalAverage")

	myStats.Total1.Increment()
	myStats.Total1.Add(41)
	assert.Equal(uint64(42), myStats.Total1.TotalGet())

	assert.Equal(uint64(0), myStats.Average1.AverageGet())
	myStats.Average1.Add(10)
	myStats.Average1.Add(20)
	myStats.Average1.Increment()
	assert.Equal(uint64(3), myStats.Average1.CountGet())
	assert.Equal(uint64(31), myStats.Average1.TotalGet())
	assert.Equal(uint64(10), myStats.Average1.AverageGet())

	statString := SprintStats(StatFormatParsable1, "", "totalAverage")
	assert.Contains(statString, "totalAverage.Total1 total:42\n")
	assert.Contains(statString, "totalAverage.Average1 total:31 count:3 avg:10\n")

	myStats.Total1.Reset()
	myStats.Average1.Reset()
	assert.Equal(uint64(0), myStats.Total1.TotalGet())
	assert.Equal(uint64(0), myStats.Average1.CountGet())
	assert.Equal(uint64(0), myStats.Average1.TotalGet())
}

func TestLog2RoundIdx(t *testing.T) {
	assert := assert.New(t)

	expected := map[uint64]uint{
		0: 0, 1: 1, 2: 2, 3: 3, 5: 3, 6: 4, 11: 4, 12: 5, 22: 5, 23: 6,
		1024: 11, 1448: 11, 1449: 12,
		math.MaxUint64: 65,
	}
	for value, idx := range expected {
		assert.Equal(idx, log2RoundIdx(value), "log2RoundIdx(%d)", value)
	}

	// every bucket's range maps back to that bucket
	for i := 1; i < len(log2RoundBucketTable)-1; i++ {
		info := log2RoundBucketTable[i]
		assert.Equal(uint(i), log2RoundIdx(info.RangeLow), "bucket %d RangeLow %d", i, info.RangeLow)
		assert.Equal(uint(i), log2RoundIdx(info.RangeHigh), "bucket %d RangeHigh %d", i, info.RangeHigh)
		assert.Equal(uint(i), log2RoundIdx(info.NominalVal), "bucket %d NominalVal %d", i, info.NominalVal)
		assert.Equal(info.RangeHigh+1, log2RoundBucketTable[i+1].RangeLow)
	}

	// random values land inside their bucket's range
	for i := 0; i < 1000; i++ {
		value := rand.Uint64() >> uint(rand.Intn(64))
		idx := log2RoundIdx(value)
		if idx > 64 {
			idx = 64
		}
		assert.True(value >= log2RoundBucketTable[idx].RangeLow)
		assert.True(value <= log2RoundBucketTable[idx].RangeHigh)
	}
}

func TestBucketLog2Round(t *testing.T) {
	assert := assert.New(t)

	var myStats struct {
		Small BucketLog2Round
		Large BucketLog2Round
	}
	myStats.Small.NBucket = 3
	Register("bucketTest", "", &myStats)
	defer UnRegister("bucketTest", "")

	// NBucket is raised to the minimum
	assert.Equal(uint(10), myStats.Small.NBucket)
	assert.Equal(uint(65), myStats.Large.NBucket)

	for _, value := range []uint64{0, 1, 2, 4, 4, 1 << 20} {
		myStats.Small.Add(value)
		myStats.Large.Add(value)
	}

	dist := myStats.Large.DistGet()
	assert.Equal(65, len(dist))
	assert.Equal(uint64(1), dist[0].Count)
	assert.Equal(uint64(1), dist[1].Count)
	assert.Equal(uint64(1), dist[2].Count)
	assert.Equal(uint64(2), dist[3].Count)
	assert.Equal(uint64(1), dist[21].Count)
	assert.Equal(uint64(6), myStats.Large.CountGet())

	// 1<<20 lands in the last of the ten buckets
	smallDist := myStats.Small.DistGet()
	assert.Equal(10, len(smallDist))
	assert.Equal(uint64(1), smallDist[9].Count)
	assert.Equal(uint64(math.MaxUint64), smallDist[9].RangeHigh)

	statString := SprintStats(StatFormatParsable1, "bucketTest", "*")
	lines := strings.Split(strings.TrimSpace(statString), "\n")
	assert.Equal(2, len(lines))
	assert.True(strings.HasPrefix(lines[0], "bucketTest.Small total:"), lines[0])
	assert.True(strings.HasPrefix(lines[1], "bucketTest.Large total:"), lines[1])
	assert.Contains(lines[1], " 0:1 1:1 2:1 4:2 ")
	assert.Contains(lines[1], " 2^20:1")

	myStats.Large.Reset()
	assert.Equal(uint64(0), myStats.Large.CountGet())
}

func TestSprintStatsUnregistered(t *testing.T) {
	assert.Panics(t, func() { SprintStats(StatFormatParsable1, "noSuchPkg", "noSuchGroup") })
}
