package hazard

//go:generate mockgen -destination=mocks/mock_hazard.go -package=mocks github.com/cas-4/mattermost-plugin-cas4/server/hazard Remote,Telemetry
