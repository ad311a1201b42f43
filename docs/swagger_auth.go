package docs

// @title           Authentication Service API
// @version         1.0
// @description     Registers users, exchanges credentials for signed bearer tokens and resolves tokens back into identities.

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8000
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.
