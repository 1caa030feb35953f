// Package api provides HTTP clients for the upstream market data APIs.
//
// Endpoints:
//   - Retail prices: https://www.elprisetjustnu.se/api/v1/prices/{yyyy}/{MM}-{DD}_{zone}.json (JSON)
//   - ENTSO-E transparency platform: https://web-api.tp.entsoe.eu/api (XML, securityToken query param)
//
// Every attempt waits on the client's Pacer first, so the request rate stays
// within upstream courtesy limits no matter how many retries happen.
package api
