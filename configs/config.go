package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"

	"github.com/joho/godotenv"
)

// GetEnv fills Config from the environment. A variable that is unset falls
// back to its envDefault; a field without one is required.
func GetEnv() (config *Config, er error) {
	err := godotenv.Load()
	if err != nil {
		_ = godotenv.Load("../../.env")
	}

	config = &Config{}
	if err := load(config); err != nil {
		return nil, err
	}
	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func load(config *Config) error {
	v := reflect.ValueOf(config).Elem()
	t := v.Type()

	for i := range make([]struct{}, v.NumField()) {
		field := t.Field(i)
		envTag := field.Tag.Get("env")
		if envTag == "" {
			continue
		}

		value, exists := os.LookupEnv(envTag)
		if !exists {
			def, hasDefault := field.Tag.Lookup("envDefault")
			if !hasDefault {
				return fmt.Errorf("environment variable %s not set", envTag)
			}
			value = def
		}

		switch field.Type.Kind() {
		case reflect.String:
			v.Field(i).SetString(value)
		case reflect.Int:
			intValue, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %v", envTag, err)
			}
			v.Field(i).SetInt(int64(intValue))
		case reflect.Bool:
			boolValue, err := strconv.ParseBool(value)
			if err != nil {
				return fmt.Errorf("invalid boolean value for %s: %v", envTag, err)
			}
			v.Field(i).SetBool(boolValue)
		default:
			return fmt.Errorf("unsupported config field kind %s for %s", field.Type.Kind(), envTag)
		}
	}
	return nil
}

func (c *Config) validate() error {
	if !c.AppEnv.IsValid() {
		return fmt.Errorf("invalid APP_ENV %q", c.AppEnv)
	}
	if !c.TableDriver.IsValid() {
		return fmt.Errorf("invalid TABLE_DRIVER %q", c.TableDriver)
	}
	if !c.KVDriver.IsValid() {
		return fmt.Errorf("invalid KV_DRIVER %q", c.KVDriver)
	}
	if !c.PaymentProvider.IsValid() {
		return fmt.Errorf("invalid PAYMENT_PROVIDER %q", c.PaymentProvider)
	}
	if !c.CounterMode.IsValid() {
		return fmt.Errorf("invalid COUNTER_MODE %q", c.CounterMode)
	}
	if c.LedgerSheet == "" || c.InvoiceSheet == "" {
		return fmt.Errorf("LEDGER_SHEET and INVOICE_SHEET are required")
	}
	return nil
}
