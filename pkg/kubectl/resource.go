package kubectl

import "strings"

// ResourceKind is a closed enumeration of the resource kinds the server
// reasons about. Unknown kinds still execute (kubectl knows more kinds
// than we do, CRDs included) but get no special policy treatment.
type ResourceKind int

const (
	KindUnknown ResourceKind = iota
	KindPod
	KindDeployment
	KindStatefulSet
	KindDaemonSet
	KindReplicaSet
	KindJob
	KindCronJob
	KindService
	KindConfigMap
	KindSecret
	KindIngress
	KindPersistentVolumeClaim
	KindNamespace
	KindNode
	KindServiceAccount
	KindRole
	KindRoleBinding
	KindClusterRole
	KindClusterRoleBinding
	KindMutatingWebhookConfiguration
	KindValidatingWebhookConfiguration
	KindCustomResourceDefinition
	KindPersistentVolume
	KindStorageClass
)

// kindInfo marks which kinds are cluster-scoped and which are
// write-protected unless cluster-scoped apply is explicitly allowed.
type kindInfo struct {
	name          string
	clusterScoped bool
	protected     bool
}

var kindTable = map[ResourceKind]kindInfo{
	KindUnknown:                        {name: ""},
	KindPod:                            {name: "Pod"},
	KindDeployment:                     {name: "Deployment"},
	KindStatefulSet:                    {name: "StatefulSet"},
	KindDaemonSet:                      {name: "DaemonSet"},
	KindReplicaSet:                     {name: "ReplicaSet"},
	KindJob:                            {name: "Job"},
	KindCronJob:                        {name: "CronJob"},
	KindService:                        {name: "Service"},
	KindConfigMap:                      {name: "ConfigMap"},
	KindSecret:                         {name: "Secret"},
	KindIngress:                        {name: "Ingress"},
	KindPersistentVolumeClaim:          {name: "PersistentVolumeClaim"},
	KindNamespace:                      {name: "Namespace", clusterScoped: true},
	KindNode:                           {name: "Node", clusterScoped: true},
	KindServiceAccount:                 {name: "ServiceAccount"},
	KindRole:                           {name: "Role"},
	KindRoleBinding:                    {name: "RoleBinding"},
	KindClusterRole:                    {name: "ClusterRole", clusterScoped: true, protected: true},
	KindClusterRoleBinding:             {name: "ClusterRoleBinding", clusterScoped: true, protected: true},
	KindMutatingWebhookConfiguration:   {name: "MutatingWebhookConfiguration", clusterScoped: true, protected: true},
	KindValidatingWebhookConfiguration: {name: "ValidatingWebhookConfiguration", clusterScoped: true, protected: true},
	KindCustomResourceDefinition:       {name: "CustomResourceDefinition", clusterScoped: true, protected: true},
	KindPersistentVolume:               {name: "PersistentVolume", clusterScoped: true, protected: true},
	KindStorageClass:                   {name: "StorageClass", clusterScoped: true},
}

// kindAliases maps lowercase kind names, plurals, and kubectl short
// names onto the enumeration.
var kindAliases = map[string]ResourceKind{
	"pod":                             KindPod,
	"pods":                            KindPod,
	"po":                              KindPod,
	"deployment":                      KindDeployment,
	"deployments":                     KindDeployment,
	"deploy":                          KindDeployment,
	"statefulset":                     KindStatefulSet,
	"statefulsets":                    KindStatefulSet,
	"sts":                             KindStatefulSet,
	"daemonset":                       KindDaemonSet,
	"daemonsets":                      KindDaemonSet,
	"ds":                              KindDaemonSet,
	"replicaset":                      KindReplicaSet,
	"replicasets":                     KindReplicaSet,
	"rs":                              KindReplicaSet,
	"job":                             KindJob,
	"jobs":                            KindJob,
	"cronjob":                         KindCronJob,
	"cronjobs":                        KindCronJob,
	"cj":                              KindCronJob,
	"service":                         KindService,
	"services":                        KindService,
	"svc":                             KindService,
	"configmap":                       KindConfigMap,
	"configmaps":                      KindConfigMap,
	"cm":                              KindConfigMap,
	"secret":                          KindSecret,
	"secrets":                         KindSecret,
	"ingress":                         KindIngress,
	"ingresses":                       KindIngress,
	"ing":                             KindIngress,
	"persistentvolumeclaim":           KindPersistentVolumeClaim,
	"persistentvolumeclaims":          KindPersistentVolumeClaim,
	"pvc":                             KindPersistentVolumeClaim,
	"namespace":                       KindNamespace,
	"namespaces":                      KindNamespace,
	"ns":                              KindNamespace,
	"node":                            KindNode,
	"nodes":                           KindNode,
	"no":                              KindNode,
	"serviceaccount":                  KindServiceAccount,
	"serviceaccounts":                 KindServiceAccount,
	"sa":                              KindServiceAccount,
	"role":                            KindRole,
	"roles":                           KindRole,
	"rolebinding":                     KindRoleBinding,
	"rolebindings":                    KindRoleBinding,
	"clusterrole":                     KindClusterRole,
	"clusterroles":                    KindClusterRole,
	"clusterrolebinding":              KindClusterRoleBinding,
	"clusterrolebindings":             KindClusterRoleBinding,
	"mutatingwebhookconfiguration":    KindMutatingWebhookConfiguration,
	"mutatingwebhookconfigurations":   KindMutatingWebhookConfiguration,
	"validatingwebhookconfiguration":  KindValidatingWebhookConfiguration,
	"validatingwebhookconfigurations": KindValidatingWebhookConfiguration,
	"customresourcedefinition":        KindCustomResourceDefinition,
	"customresourcedefinitions":       KindCustomResourceDefinition,
	"crd":                             KindCustomResourceDefinition,
	"crds":                            KindCustomResourceDefinition,
	"persistentvolume":                KindPersistentVolume,
	"persistentvolumes":               KindPersistentVolume,
	"pv":                              KindPersistentVolume,
	"storageclass":                    KindStorageClass,
	"storageclasses":                  KindStorageClass,
	"sc":                              KindStorageClass,
}

// ParseKind maps a user-supplied kind string onto the enumeration.
// Unknown strings parse to KindUnknown.
func ParseKind(s string) ResourceKind {
	if kind, ok := kindAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return kind
	}
	return KindUnknown
}

// String returns the canonical kind name, or "" for KindUnknown.
func (k ResourceKind) String() string {
	return kindTable[k].name
}

// ClusterScoped reports whether the kind is not bound to a namespace.
func (k ResourceKind) ClusterScoped() bool {
	return kindTable[k].clusterScoped
}

// Protected reports whether mutating the kind is blocked unless
// cluster-scoped apply is explicitly allowed.
func (k ResourceKind) Protected() bool {
	return kindTable[k].protected
}
