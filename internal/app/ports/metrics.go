package ports

type LoadMetrics interface {
	RecordLoad(domain string, frameCount int)
	RecordActionErrors(n int)
	RecordFailure(code string)
}
