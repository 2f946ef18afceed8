package enum

type EnvEnum string

const (
	LOCAL       EnvEnum = "local"
	DEVELOPMENT EnvEnum = "development"
	PRODUCTION  EnvEnum = "production"
	STAGING     EnvEnum = "staging"
)

func (e EnvEnum) ToString() string {
	switch e {
	case LOCAL:
		return "local"
	case DEVELOPMENT:
		return "development"
	case PRODUCTION:
		return "production"
	case STAGING:
		return "staging"
	}
	return ""
}

func (e EnvEnum) IsValid() bool {
	switch e {
	case LOCAL, DEVELOPMENT, PRODUCTION, STAGING:
		return true
	}
	return false
}

/*----------- TableDriverEnum -----------*/

type TableDriverEnum string

const (
	TableMemory   TableDriverEnum = "memory"
	TablePostgres TableDriverEnum = "postgres"
	TableMySQL    TableDriverEnum = "mysql"
	TableSQLite   TableDriverEnum = "sqlite"
)

func (e TableDriverEnum) ToString() string {
	return string(e)
}

func (e TableDriverEnum) IsValid() bool {
	switch e {
	case TableMemory, TablePostgres, TableMySQL, TableSQLite:
		return true
	}
	return false
}

/*----------- KVDriverEnum -----------*/

type KVDriverEnum string

const (
	KVRedis  KVDriverEnum = "redis"
	KVMemory KVDriverEnum = "memory"
)

func (e KVDriverEnum) IsValid() bool {
	switch e {
	case KVRedis, KVMemory:
		return true
	}
	return false
}

/*----------- PaymentProviderEnum -----------*/

type PaymentProviderEnum string

const (
	DOKU     PaymentProviderEnum = "doku"
	MIDTRANS PaymentProviderEnum = "midtrans"
)

func (e PaymentProviderEnum) IsValid() bool {
	switch e {
	case DOKU, MIDTRANS:
		return true
	}
	return false
}

/*----------- CounterModeEnum -----------*/

type CounterModeEnum string

const (
	// CounterAtomic increments the daily counter in a single store operation.
	CounterAtomic CounterModeEnum = "atomic"
	// CounterLegacy reads, increments and writes back. Concurrent callers
	// on the same date can receive the same identifier.
	CounterLegacy CounterModeEnum = "legacy"
)

func (e CounterModeEnum) IsValid() bool {
	switch e {
	case CounterAtomic, CounterLegacy:
		return true
	}
	return false
}
