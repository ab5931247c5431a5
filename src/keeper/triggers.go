package keeper

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/api3dao/airkeeper/src/utils/config"
	"github.com/api3dao/airkeeper/src/utils/protocol"
)

// resolvePspTriggers walks triggers.protoPsp, validates every referenced
// subscription, template and endpoint against their derived identities and
// groups surviving subscriptions by template. Every failure is a warning
// and a skip, never a cycle abort.
func (self *Coordinator) resolvePspTriggers() (groups []*GroupedSubscriptions) {
	byTemplate := map[common.Hash]*GroupedSubscriptions{}

	for _, subscriptionID := range self.merged.Triggers.ProtoPsp {
		raw, ok := self.merged.Subscriptions[strings.ToLower(subscriptionID)]
		if !ok {
			self.log.WithField("subscriptionId", subscriptionID).Warn("Subscription not found, skipping")
			self.monitor.GetReport().State.ValidationSkips.Inc()
			continue
		}

		subscription, err := parseSubscription(subscriptionID, raw)
		if err != nil {
			self.log.WithError(err).WithField("subscriptionId", subscriptionID).Warn("Invalid subscription, skipping")
			self.monitor.GetReport().State.ValidationSkips.Inc()
			continue
		}

		group, ok := byTemplate[subscription.TemplateID]
		if !ok {
			group = self.resolveTemplate(subscription.TemplateID)
			if group == nil {
				// Template or endpoint failed validation, logged already
				self.monitor.GetReport().State.ValidationSkips.Inc()
				continue
			}
			byTemplate[subscription.TemplateID] = group
			groups = append(groups, group)
		}

		group.Subscriptions = append(group.Subscriptions, subscription)
	}

	// Drop groups that validated but gathered no subscriptions
	out := groups[:0]
	for _, group := range groups {
		if len(group.Subscriptions) > 0 {
			out = append(out, group)
		}
	}
	return out
}

// resolveTemplate validates the template and its endpoint, returns nil on
// any mismatch
func (self *Coordinator) resolveTemplate(templateID common.Hash) (group *GroupedSubscriptions) {
	log := self.log.WithField("templateId", templateID.Hex())

	template, ok := self.merged.Templates[templateID.Hex()]
	if !ok {
		log.Warn("Template not found, skipping its subscriptions")
		return nil
	}

	endpointID := common.HexToHash(template.EndpointID)
	templateParameters := common.FromHex(template.TemplateParameters)

	if derived := protocol.DeriveTemplateID(endpointID, templateParameters); derived != templateID {
		log.WithField("derived", derived.Hex()).Warn("Template id does not match derived hash, skipping")
		return nil
	}

	endpoint, ok := self.merged.Endpoints[endpointID.Hex()]
	if !ok {
		log.WithField("endpointId", endpointID.Hex()).Warn("Endpoint not found, skipping")
		return nil
	}

	derivedEndpointID, err := protocol.DeriveEndpointID(endpoint.OisTitle, endpoint.EndpointName)
	if err != nil || derivedEndpointID != endpointID {
		log.WithField("endpointId", endpointID.Hex()).Warn("Endpoint id does not match derived hash, skipping")
		return nil
	}

	return &GroupedSubscriptions{
		TemplateID:         templateID,
		EndpointID:         endpointID,
		Endpoint:           endpoint,
		TemplateParameters: templateParameters,
	}
}

func parseSubscription(declaredID string, raw config.Subscription) (subscription *Subscription, err error) {
	chainID, ok := new(big.Int).SetString(raw.ChainID, 10)
	if !ok {
		err = fmt.Errorf("chain id %q is not numeric", raw.ChainID)
		return
	}

	fulfillFunctionID := common.FromHex(raw.FulfillFunctionID)
	if len(fulfillFunctionID) != 4 {
		err = fmt.Errorf("fulfillFunctionId %q is not 4 bytes", raw.FulfillFunctionID)
		return
	}

	subscription = &Subscription{
		ChainID:           chainID,
		Airnode:           common.HexToAddress(raw.AirnodeAddress),
		TemplateID:        common.HexToHash(raw.TemplateID),
		Parameters:        common.FromHex(raw.Parameters),
		Conditions:        common.FromHex(raw.Conditions),
		Relayer:           common.HexToAddress(raw.Relayer),
		Sponsor:           common.HexToAddress(raw.Sponsor),
		Requester:         common.HexToAddress(raw.Requester),
		FulfillFunctionID: [4]byte(fulfillFunctionID),
	}

	derived, err := protocol.DeriveSubscriptionID(
		subscription.ChainID,
		subscription.Airnode,
		subscription.TemplateID,
		subscription.Parameters,
		subscription.Conditions,
		subscription.Relayer,
		subscription.Sponsor,
		subscription.Requester,
		subscription.FulfillFunctionID,
	)
	if err != nil {
		return nil, err
	}
	if derived != common.HexToHash(declaredID) {
		return nil, fmt.Errorf("subscription id %s does not match derived %s", declaredID, derived.Hex())
	}

	subscription.ID = derived
	return
}

// resolveRrpTriggers validates rrpBeaconServerKeeperJobs the same way
func (self *Coordinator) resolveRrpTriggers() (jobs []*RrpJob) {
	for _, raw := range self.merged.Triggers.RrpBeaconServerKeeperJobs {
		log := self.log.WithField("templateId", raw.TemplateID)

		endpointID := common.HexToHash(raw.EndpointID)
		endpoint, ok := self.merged.Endpoints[endpointID.Hex()]
		if !ok {
			log.WithField("endpointId", raw.EndpointID).Warn("Endpoint not found, skipping keeper job")
			self.monitor.GetReport().State.ValidationSkips.Inc()
			continue
		}

		derivedEndpointID, err := protocol.DeriveEndpointID(endpoint.OisTitle, endpoint.EndpointName)
		if err != nil || derivedEndpointID != endpointID {
			log.WithField("endpointId", raw.EndpointID).Warn("Endpoint id does not match derived hash, skipping keeper job")
			self.monitor.GetReport().State.ValidationSkips.Inc()
			continue
		}

		templateParameters := common.FromHex(raw.TemplateParameters)
		templateID := common.HexToHash(raw.TemplateID)
		derivedTemplateID := protocol.DeriveRrpTemplateID(self.airnode.Address, endpointID, templateParameters)
		if derivedTemplateID != templateID {
			log.WithField("derived", derivedTemplateID.Hex()).Warn("Template id does not match derived hash, skipping keeper job")
			self.monitor.GetReport().State.ValidationSkips.Inc()
			continue
		}

		threshold, err := ParseDeviationPercentage(raw.DeviationPercentage)
		if err != nil {
			log.WithError(err).Warn("Invalid deviation percentage, skipping keeper job")
			self.monitor.GetReport().State.ValidationSkips.Inc()
			continue
		}

		jobs = append(jobs, &RrpJob{
			TemplateID:         templateID,
			EndpointID:         endpointID,
			Endpoint:           endpoint,
			TemplateParameters: templateParameters,
			BeaconID:           protocol.DeriveBeaconID(templateID, templateParameters),
			DeviationThreshold: threshold,
			KeeperSponsor:      common.HexToAddress(raw.KeeperSponsor),
			RequestSponsor:     common.HexToAddress(raw.RequestSponsor),
			ChainIds:           raw.ChainIds,
		})
	}
	return
}
