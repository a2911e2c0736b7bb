package services

// Pipeline stage names recorded on failures and log lines.
const (
	StageValidate  = "validate"
	StageAcquire   = "acquire"
	StageExtract   = "extract"
	StageNormalize = "normalize"
	StagePersist   = "persist"
)
