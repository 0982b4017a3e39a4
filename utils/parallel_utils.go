package utils

import "fmt"

/*
PartitionMap splits a linear index range into contiguous buckets, one
per worker. The element-wise error integration and the per-element
refinement selection both walk active elements through one of these.
*/
type PartitionMap struct {
	MaxIndex       int
	ParallelDegree int
}

func NewPartitionMap(ParallelDegree, maxIndex int) *PartitionMap {
	return &PartitionMap{
		MaxIndex:       maxIndex,
		ParallelDegree: ParallelDegree,
	}
}

// GetBucketRange returns the half open index range [imin,imax) of bucket bn.
func (pm *PartitionMap) GetBucketRange(bn int) (imin, imax int) {
	imin, imax = Split1D(pm.MaxIndex, pm.ParallelDegree, bn)
	return
}

func (pm *PartitionMap) GetBucketDimension(bn int) (bucketDim int) {
	var (
		imin, imax = pm.GetBucketRange(bn)
	)
	bucketDim = imax - imin
	return
}

// GetBucket locates the bucket containing global index gid.
func (pm *PartitionMap) GetBucket(gid int) (bucketNum, imin, imax int) {
	var (
		tryCount int
	)
	// Initial guess assumes equal sized buckets, then correct
	bucketNum = gid * pm.ParallelDegree / pm.MaxIndex
	if bucketNum >= pm.ParallelDegree {
		bucketNum = pm.ParallelDegree - 1
	}
	for {
		imin, imax = pm.GetBucketRange(bucketNum)
		switch {
		case gid < imin:
			bucketNum--
		case gid >= imax:
			bucketNum++
		default:
			return
		}
		tryCount++
		if tryCount > pm.ParallelDegree {
			err := fmt.Errorf("unable to find bucket for index %d, MaxIndex = %d", gid, pm.MaxIndex)
			panic(err)
		}
	}
}

/*
Split1D partitions the range [0,iMax) into numThreads contiguous pieces
differing in size by at most one, the remainder spread over the leading
buckets.
*/
func Split1D(iMax, numThreads, threadNum int) (istart, iend int) {
	var (
		Npart            = iMax / numThreads
		startAdd, endAdd int
		remainder        = iMax % numThreads
	)
	if threadNum < remainder {
		startAdd = threadNum
		endAdd = startAdd + 1
	} else {
		startAdd = remainder
		endAdd = remainder
	}
	istart = threadNum*Npart + startAdd
	iend = istart + Npart + (endAdd - startAdd)
	return
}
