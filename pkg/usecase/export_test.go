package usecase

// Export unexported functions for testing
var (
	PageEntirelyOlderForTest           = pageEntirelyOlder
	RenderTranscriptForTest            = renderTranscript
	DescribeFailureForTest             = describeFailure
	CreateOrUpdateBigQueryTableForTest = createOrUpdateBigQueryTable
	SummaryObjectPathForTest           = summaryObjectPath
)
