// Package credentials provisions tenant-owner logins in the identity
// provider. The platform treats authentication itself as an opaque
// capability; only user creation and attribute tagging live here.
package credentials

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cognitoidentityprovider"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/storeops/retail-platform/shared/models"
	"github.com/storeops/retail-platform/shared/utils"
)

// Provider provisions login credentials for tenant owners
type Provider interface {
	// Provision creates a login for the owner and tags it with the tenant
	// id and entitlement set. Returns the provider's subject id.
	Provision(email, secret string, tenantID uuid.UUID, features models.FeatureSet) (string, error)
}

// CognitoProvider is the AWS Cognito implementation of Provider
type CognitoProvider struct {
	client     *cognitoidentityprovider.CognitoIdentityProvider
	clientID   string
	secret     string
	userPoolID string
	breaker    *utils.CircuitBreaker
}

// NewCognito creates a provider from COGNITO_* environment configuration
func NewCognito() (*CognitoProvider, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(os.Getenv("AWS_REGION")),
	})
	if err != nil {
		return nil, err
	}
	return &CognitoProvider{
		client:     cognitoidentityprovider.New(sess),
		clientID:   os.Getenv("COGNITO_CLIENT_ID"),
		secret:     os.Getenv("COGNITO_CLIENT_SECRET"),
		userPoolID: os.Getenv("COGNITO_USER_POOL_ID"),
		breaker:    utils.NewCircuitBreaker(5, 30*time.Second),
	}, nil
}

// secretHash computes the Cognito client secret hash for a username
func (p *CognitoProvider) secretHash(username string) string {
	if p.secret == "" {
		return ""
	}
	mac := hmac.New(sha256.New, []byte(p.secret))
	mac.Write([]byte(username + p.clientID))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func (p *CognitoProvider) Provision(email, secret string, tenantID uuid.UUID, features models.FeatureSet) (string, error) {
	attrs := []*cognitoidentityprovider.AttributeType{
		{Name: aws.String("email"), Value: aws.String(email)},
		{Name: aws.String("custom:role"), Value: aws.String(string(models.RoleOwner))},
		{Name: aws.String("custom:tenant_id"), Value: aws.String(tenantID.String())},
		{Name: aws.String("custom:features"), Value: aws.String(strings.Join([]string(features), ","))},
	}

	input := &cognitoidentityprovider.SignUpInput{
		ClientId:       aws.String(p.clientID),
		Username:       aws.String(email),
		Password:       aws.String(secret),
		UserAttributes: attrs,
	}
	if hash := p.secretHash(email); hash != "" {
		input.SecretHash = aws.String(hash)
	}

	var out *cognitoidentityprovider.SignUpOutput
	err := p.breaker.Call(func() error {
		var signUpErr error
		out, signUpErr = p.client.SignUp(input)
		return signUpErr
	})
	if err != nil {
		return "", err
	}

	// Confirm immediately: owners approved by an operator should not wait
	// on the email verification loop.
	confirmErr := p.breaker.Call(func() error {
		_, err := p.client.AdminConfirmSignUp(&cognitoidentityprovider.AdminConfirmSignUpInput{
			UserPoolId: aws.String(p.userPoolID),
			Username:   aws.String(email),
		})
		return err
	})
	if confirmErr != nil {
		logrus.WithFields(logrus.Fields{
			"email": email,
			"error": confirmErr,
		}).Warn("Owner created but auto-confirmation failed")
	}

	return aws.StringValue(out.UserSub), nil
}

// Deprovision removes a login, used to compensate a failed registration
func (p *CognitoProvider) Deprovision(email string) error {
	return p.breaker.Call(func() error {
		_, err := p.client.AdminDeleteUser(&cognitoidentityprovider.AdminDeleteUserInput{
			UserPoolId: aws.String(p.userPoolID),
			Username:   aws.String(email),
		})
		return err
	})
}
