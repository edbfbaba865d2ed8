package main

import (
	"sync"

	"github.com/pyhub-apps/pdfprint-golang/pkg/validate"
)

type validateFunc func(path string) (validate.Result, error)

type fileJob struct {
	index int
	path  string
}

// validateFiles runs fn over files with at most workers goroutines.
// Reports keep the order of files.
func validateFiles(files []string, workers int, fn validateFunc) []fileReport {
	reports := make([]fileReport, len(files))
	if workers > len(files) {
		workers = len(files)
	}

	jobs := make(chan fileJob, workers*2)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				report := fileReport{File: job.path}
				result, err := fn(job.path)
				if err != nil {
					report.Error = err.Error()
				} else {
					report.Result = &result
				}
				// each index is written by exactly one worker
				reports[job.index] = report
			}
		}()
	}

	for i, path := range files {
		jobs <- fileJob{index: i, path: path}
	}
	close(jobs)
	wg.Wait()
	return reports
}
