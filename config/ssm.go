package config

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog/log"
)

type parametersAPI interface {
	GetParametersByPath(ctx context.Context, params *ssm.GetParametersByPathInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error)
}

// OverlaySSM loads every parameter under prefix into config, keyed by the
// last path segment (/melba/prod/ADMIN_PASSWORD -> ADMIN_PASSWORD).
// Parameters win over the environment.
func OverlaySSM(ctx context.Context, config map[string]string, prefix string) error {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(GetString(config, "AWS_REGION", "us-east-1")))
	if err != nil {
		return fmt.Errorf("failed to load AWS config: %w", err)
	}
	return overlay(ctx, ssm.NewFromConfig(awsCfg), config, prefix)
}

func overlay(ctx context.Context, client parametersAPI, config map[string]string, prefix string) error {
	input := &ssm.GetParametersByPathInput{
		Path:           aws.String(prefix),
		Recursive:      aws.Bool(true),
		WithDecryption: aws.Bool(true),
	}
	paginator := ssm.NewGetParametersByPathPaginator(client, input)

	loaded := 0
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("ssm parameters under %s: %w", prefix, err)
		}
		for _, p := range page.Parameters {
			key := path.Base(aws.ToString(p.Name))
			if key == "" || key == "." || key == "/" {
				continue
			}
			config[strings.ToUpper(key)] = aws.ToString(p.Value)
			loaded++
		}
	}
	log.Info().Str("path", prefix).Int("count", loaded).Msg("Loaded SSM parameters")
	return nil
}
