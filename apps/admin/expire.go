package main

import (
	"context"
	"fmt"
)

// expire fails the enrollments still joined on challenges that have ended.
func (cli *commandLine) expire() error {
	n, err := cli.enrSvc.ExpireStale(context.Background())
	cli.metrics.ObserveExpired(n)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%d enrollment(s) expired\n", n)
	return nil
}
