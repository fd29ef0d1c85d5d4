package appgen

import (
	"fmt"
	"strings"

	"github.com/hochfrequenz/app-forge/internal/domain"
)

// fallbackAppCode renders a minimal runnable scaffold when code
// generation failed.
func fallbackAppCode(idea domain.Idea) string {
	var features strings.Builder
	for _, f := range idea.Features {
		fmt.Fprintf(&features, "        # - %s\n", f)
	}

	return fmt.Sprintf(`"""
%s

%s
"""

import boto3
import streamlit as st
from dotenv import load_dotenv
import os

load_dotenv()


class App:
    def __init__(self):
        self.aws_region = os.getenv('AWS_REGION', 'us-east-1')
        self.setup_aws_clients()

    def setup_aws_clients(self):
        """Initialize AWS service clients"""
        # Clients needed: %s
        pass

    def run(self):
        """Main application logic"""
        st.title("%s")
        st.write("%s")

        # Features to implement:
%s

if __name__ == "__main__":
    app = App()
    app.run()
`, idea.Name, idea.Description, strings.Join(idea.Services, ", "), idea.Name, idea.Description, features.String())
}

func fallbackReadme(idea domain.Idea) string {
	bullets := func(items []string) string {
		var b strings.Builder
		for _, item := range items {
			fmt.Fprintf(&b, "- %s\n", item)
		}
		return b.String()
	}

	difficulty := idea.Difficulty
	if difficulty == "" {
		difficulty = "intermediate"
	}

	return fmt.Sprintf(`# %s

%s

## Features

%s
## AWS Services Used

%s
## Prerequisites

- Python 3.10+
- AWS Account with appropriate permissions
- AWS CLI configured

## Installation

`+"```bash\npip install -r requirements.txt\n```"+`

## Configuration

Copy `+"`.env.example`"+` to `+"`.env`"+` and fill in your AWS credentials:

`+"```bash\ncp .env.example .env\n```"+`

## Usage

`+"```bash\nstreamlit run app.py\n```"+`

## AWS Deployment

Deploy the infrastructure using the provided CloudFormation template:

`+"```bash\ncd aws\nchmod +x deploy.sh\n./deploy.sh\n```"+`

## Use Case

%s

## Difficulty Level

%s

## License

MIT
`, idea.Name, idea.Description, bullets(idea.Features), bullets(idea.Services), idea.UseCase, capitalize(difficulty))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func fallbackCloudFormation(idea domain.Idea) string {
	return fmt.Sprintf(`AWSTemplateFormatVersion: '2010-09-09'
Description: CloudFormation template for %s

Parameters:
  Environment:
    Type: String
    Default: dev
    Description: Environment name

Resources:
  # Resources needed for: %s

  AppLogGroup:
    Type: AWS::Logs::LogGroup
    Properties:
      LogGroupName: !Sub '/%s'
      RetentionInDays: 7

Outputs:
  LogGroupName:
    Description: CloudWatch Log Group
    Value: !Ref AppLogGroup
`, idea.Name, strings.Join(idea.Services, ", "), domain.Slugify(idea.Name))
}
