// Package fakes provides test doubles for the AWS SSM client.
//
// Fakes are manually implemented (not generated) to provide precise control
// over paging and failures.
//
// Usage:
//
//	fake := fakes.NewFakeSSMClient()
//	fake.AddPage("", aws.String("next"), map[string]string{"/app/a": "1"})
//	fake.AddPage("next", nil, map[string]string{"/app/b": "2"})
//	store, _ := providers.NewAWSSSMStore("app", cfg, providers.WithSSMClient(fake))
package fakes
