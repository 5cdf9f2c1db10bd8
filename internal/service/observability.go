package service

import "github.com/alexanderramin/punchclock/internal/observability"

func firstObserver(observers []observability.UseCaseObserver) observability.UseCaseObserver {
	for _, obs := range observers {
		if obs != nil {
			return obs
		}
	}
	return observability.NoopUseCaseObserver{}
}
