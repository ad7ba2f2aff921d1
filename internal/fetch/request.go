package fetch

import (
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// RequestBuilder builds the request for one page. nextToken is nil for the
// first page.
type RequestBuilder func(nextToken *string) *ssm.GetParametersByPathInput

// RequestBuilderFor returns a builder that requests o's namespace.
func RequestBuilderFor(o Options) RequestBuilder {
	return func(nextToken *string) *ssm.GetParametersByPathInput {
		input := &ssm.GetParametersByPathInput{
			Path:           aws.String(o.path),
			WithDecryption: aws.Bool(o.decrypt),
			Recursive:      aws.Bool(o.recursive),
		}
		if o.maxResults > 0 {
			input.MaxResults = aws.Int32(o.maxResults)
		}
		if hasToken(nextToken) {
			input.NextToken = aws.String(*nextToken)
		}
		return input
	}
}

// hasToken treats nil, empty and whitespace-only tokens as absent; some
// SDKs send "" on the last page instead of omitting the field.
func hasToken(token *string) bool {
	return token != nil && strings.TrimSpace(*token) != ""
}
