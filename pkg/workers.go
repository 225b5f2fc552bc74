package finddups

import (
	"sync"
)

// hashJob is one file set member waiting to be hashed
type hashJob struct {
	Index int
	Path  string
}

// hashOutcome is the result of a hashJob
type hashOutcome struct {
	Index  int
	Path   string
	Digest []byte
	Size   int64
	Err    error
}

// hashManager runs a fixed pool of hash workers
type hashManager struct {
	hashJobChan  chan *hashJob
	resultChan   chan *hashOutcome
	wg           sync.WaitGroup
	shutdownChan <-chan struct{}
	algorithm    *HashAlgorithm
	bufferSize   int
	closed       bool
	closeMutex   sync.Mutex
}

// newHashManager starts numWorkers workers. Results are closed once every
// worker has exited.
func newHashManager(numWorkers int, algorithm *HashAlgorithm, bufferSize int, shutdownChan <-chan struct{}) *hashManager {
	if numWorkers < MinHashWorkers {
		numWorkers = MinHashWorkers
	}

	manager := &hashManager{
		hashJobChan:  make(chan *hashJob, numWorkers*2),
		resultChan:   make(chan *hashOutcome, numWorkers*2),
		shutdownChan: shutdownChan,
		algorithm:    algorithm,
		bufferSize:   bufferSize,
	}

	for i := 0; i < numWorkers; i++ {
		manager.wg.Add(1)
		go manager.hashWorker(i)
	}

	go func() {
		manager.wg.Wait()
		close(manager.resultChan)
	}()

	return manager
}

// SubmitHashJob queues a job, returning false if shutdown was requested first
func (hm *hashManager) SubmitHashJob(job *hashJob) bool {
	select {
	case hm.hashJobChan <- job:
		return true
	case <-hm.shutdownChan:
		return false
	}
}

// FinishSubmitting signals that no more hash jobs will be submitted
func (hm *hashManager) FinishSubmitting() {
	hm.closeMutex.Lock()
	defer hm.closeMutex.Unlock()

	if !hm.closed {
		close(hm.hashJobChan)
		hm.closed = true
	}
}

// Results returns the channel of completed jobs, in completion order
func (hm *hashManager) Results() <-chan *hashOutcome {
	return hm.resultChan
}

// hashWorker hashes queued files until the queue closes or shutdown is requested.
// A failed file is reported as an outcome and never stops the worker.
func (hm *hashManager) hashWorker(id int) {
	defer hm.wg.Done()

	for {
		select {
		case job, ok := <-hm.hashJobChan:
			if !ok {
				return
			}

			DebugLog(DebugWorkers, "worker %d hashing %s (job %d)", id, job.Path, job.Index)

			digest, size, err := HashFileInterruptible(job.Path, hm.algorithm, hm.bufferSize, hm.shutdownChan)
			outcome := &hashOutcome{
				Index:  job.Index,
				Path:   job.Path,
				Digest: digest,
				Size:   size,
				Err:    err,
			}

			select {
			case hm.resultChan <- outcome:
			case <-hm.shutdownChan:
				return
			}

		case <-hm.shutdownChan:
			return
		}
	}
}
